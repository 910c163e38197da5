package convert

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sceneconv/internal/scene"
)

func TestPathHash(t *testing.T) {
	if got := PathHash("The quick brown fox jumps over the lazy dog"); got != 0x414FA339 {
		t.Errorf("PathHash() = %#x, want 0x414fa339", got)
	}
	if PathHash("") != 0 {
		t.Error("PathHash(\"\") != 0")
	}
}

func sampleTree() *scene.Tree {
	tree := scene.NewTree()
	one := mgl32.Vec3{1, 1, 1}
	root := tree.NewFrame("root", mgl32.Vec3{}, mgl32.Vec3{}, one)
	tree.SetRoot(root)
	hips := tree.NewFrame("hips", mgl32.Vec3{}, mgl32.Vec3{}, one)
	tree.AddChild(root, hips)
	for _, side := range []string{"left", "right"} {
		leg := tree.NewFrame(side, mgl32.Vec3{}, mgl32.Vec3{}, one)
		tree.AddChild(hips, leg)
		tree.AddChild(leg, tree.NewFrame("foot", mgl32.Vec3{}, mgl32.Vec3{}, one))
	}
	return tree
}

func TestBuildIndexResolvesEveryPathAndSuffix(t *testing.T) {
	tree := sampleTree()
	ix := BuildIndex(tree)

	for _, id := range tree.PreOrder() {
		path := tree.Path(id)
		for p := path; ; {
			got, ok := ix.Resolve(PathHash(p))
			if !ok {
				t.Errorf("Resolve(hash(%q)) missing", p)
			} else if got != p {
				t.Errorf("Resolve(hash(%q)) = %q", p, got)
			}
			i := strings.IndexByte(p, '/')
			if i < 0 {
				break
			}
			p = p[i+1:]
		}
	}
}

func TestIndexFirstInsertionWins(t *testing.T) {
	ix := NewHashIndex()
	ix.Add("a/b")
	ix.Add("a/b")
	ix.Add("c/b")

	entries := ix.Entries()
	want := []string{"a/b", "b", "c/b"}
	if len(entries) != len(want) {
		t.Fatalf("Entries() = %v, want paths %v", entries, want)
	}
	for i, e := range entries {
		if e.Path != want[i] || e.Hash != PathHash(want[i]) {
			t.Errorf("entry %d = %+v, want %q", i, e, want[i])
		}
	}
	if ix.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ix.Len())
	}
	if p, _ := ix.Resolve(PathHash("b")); p != "b" {
		t.Errorf("Resolve(b) = %q", p)
	}
}

func TestIndexCollisionKeepsFirstPath(t *testing.T) {
	// "plumless" and "buckeroo" share a CRC-32.
	ix := NewHashIndex()
	ix.Add("root/plumless")
	ix.Add("root/buckeroo")

	if PathHash("plumless") != PathHash("buckeroo") {
		t.Fatal("fixture strings do not collide")
	}
	if p, _ := ix.Resolve(PathHash("buckeroo")); p != "plumless" {
		t.Errorf("Resolve(hash(buckeroo)) = %q, want plumless", p)
	}
	// Equal-length suffixes keep colliding under a shared prefix.
	if p, _ := ix.Resolve(PathHash("root/buckeroo")); p != "root/plumless" {
		t.Errorf("Resolve(hash(root/buckeroo)) = %q, want root/plumless", p)
	}
	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ix.Len())
	}
}

func TestIndexUnknownHash(t *testing.T) {
	ix := BuildIndex(sampleTree())
	if _, ok := ix.Resolve(PathHash("root/nothing")); ok {
		t.Error("resolved a path never added")
	}
}

func TestBuildIndexEmptyTree(t *testing.T) {
	if n := BuildIndex(scene.NewTree()).Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
}

func TestIndexOrderIsPreOrder(t *testing.T) {
	a := BuildIndex(sampleTree()).Entries()
	b := BuildIndex(sampleTree()).Entries()
	if len(a) != len(b) {
		t.Fatal("index size differs between identical trees")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
	if a[0].Path != "root" || a[1].Path != "root/hips" || a[2].Path != "hips" {
		t.Errorf("first entries = %v", a[:3])
	}
}
