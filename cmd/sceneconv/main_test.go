package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/config"
	"github.com/Faultbox/sceneconv/internal/convert"
	"github.com/Faultbox/sceneconv/internal/export"
	"github.com/Faultbox/sceneconv/internal/imaging"
	"github.com/Faultbox/sceneconv/internal/logger"
	"github.com/Faultbox/sceneconv/internal/snapshot"
	"github.com/Faultbox/sceneconv/pkg/assets"
)

const duoYAML = `
name: duo
gameObjects:
  - {id: 1, name: hero, transform: 10}
  - {id: 2, name: body, transform: 11, meshFilter: 21, meshRenderer: 22}
  - {id: 3, name: lamp, transform: 12}
transforms:
  - {id: 10, gameObject: 1, children: [11], position: [0, 0, 0], rotation: [0, 0, 0, 1]}
  - {id: 11, gameObject: 2, position: [1, 0, 0], rotation: [0, 0, 0, 1]}
  - {id: 12, gameObject: 3, position: [0, 3, 0], rotation: [0, 0, 0, 1]}
meshFilters:
  - {id: 21, gameObject: 2, mesh: 30}
meshRenderers:
  - {id: 22, gameObject: 2, materials: [60]}
meshes:
  - id: 30
    name: tri
    vertexCount: 3
    subMeshes: [{firstByte: 0, indexCount: 3, firstVertex: 0, vertexCount: 3}]
    indices: [0, 1, 2]
    vertices: [0, 0, 0, 1, 0, 0, 0, 1, 0]
materials:
  - {id: 60, name: skin}
clips:
  - {id: 100, name: idle, sampleRate: 30}
  - {id: 101, name: run, sampleRate: 30}
`

func writeDuo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "duo.yaml")
	if err := os.WriteFile(path, []byte(duoYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func openDuo(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Open(writeDuo(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return snap
}

func TestPlanModes(t *testing.T) {
	snap := openDuo(t)
	tests := []struct {
		mode  string
		names []string
	}{
		{config.ModeAuto, []string{"hero", "lamp"}},
		{config.ModeObject, []string{"hero", "lamp"}},
		{config.ModeMerged, []string{"duo"}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := config.Default()
			cfg.Convert.Mode = tt.mode
			jobs := plan(cfg, snap, snap.Roots)
			if len(jobs) != len(tt.names) {
				t.Fatalf("jobs = %d, want %d", len(jobs), len(tt.names))
			}
			for i, j := range jobs {
				if j.name != tt.names[i] {
					t.Errorf("job %d = %q, want %q", i, j.name, tt.names[i])
				}
				res, err := j.run(convert.Options{})
				if err != nil {
					t.Fatalf("run %s: %v", j.name, err)
				}
				if res.Bundle.Tree.Len() == 0 {
					t.Errorf("job %s produced an empty tree", j.name)
				}
			}
		})
	}
}

func TestMergedJobWritesOneAsset(t *testing.T) {
	snap := openDuo(t)
	cfg := config.Default()
	cfg.Convert.Mode = config.ModeMerged
	jobs := plan(cfg, snap, snap.Roots)

	res, err := jobs[0].run(convert.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Bundle.Meshes) != 1 {
		t.Errorf("meshes = %d, want 1", len(res.Bundle.Meshes))
	}
	if _, ok := res.Bundle.Tree.FindByPath("RootNode/hero/body"); !ok {
		t.Error("body not found under the synthetic root")
	}

	dir := t.TempDir()
	path := outputPath(dir, jobs[0].name, cfg.Export.Format, false)
	if err := export.NewGLTF(exportOptions(cfg)).Write(res.Bundle, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "duo.glb")); err != nil {
		t.Errorf("asset not written: %v", err)
	}
}

func TestSelectRoots(t *testing.T) {
	snap := openDuo(t)

	roots, err := selectRoots(snap, "")
	if err != nil || len(roots) != 2 {
		t.Fatalf("selectRoots() = %d roots, %v", len(roots), err)
	}
	roots, err = selectRoots(snap, "hero/body")
	if err != nil || roots[0].Name != "body" {
		t.Errorf("selectRoots(hero/body) = %v, %v", roots, err)
	}
	if _, err := selectRoots(snap, "nobody"); err == nil {
		t.Error("expected error for a missing object")
	}
}

func TestSelectClips(t *testing.T) {
	all := []*assets.AnimationClip{{Name: "idle"}, {Name: "run"}, {Name: "idle"}}

	got, err := selectClips(all, nil)
	if err != nil || got != nil {
		t.Errorf("no names = %v, %v; want nil", got, err)
	}
	got, err = selectClips(all, []string{"run", "idle"})
	if err != nil {
		t.Fatalf("selectClips: %v", err)
	}
	if len(got) != 2 || got[0] != all[1] || got[1] != all[0] {
		t.Errorf("got %v, want run then the first idle", got)
	}
	if _, err := selectClips(all, []string{"jump"}); err == nil {
		t.Error("expected error for a missing clip")
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		out  string
		many bool
		want string
	}{
		{"file", filepath.Join(dir, "x.glb"), false, filepath.Join(dir, "x.glb")},
		{"existing dir", dir, false, filepath.Join(dir, "hero.glb")},
		{"many", filepath.Join(dir, "new"), true, filepath.Join(dir, "new", "hero.glb")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.out, "hero", "GLB", tt.many); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"hero":       "hero",
		"a/b:c":      "a_b_c",
		"  spaced  ": "spaced",
		"":           "scene",
	}
	for in, want := range tests {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPackRoundTrip(t *testing.T) {
	in := writeDuo(t)
	dir := t.TempDir()
	packed := filepath.Join(dir, "duo.yaml.lz4")
	if err := pack(in, packed, true); err != nil {
		t.Fatalf("pack: %v", err)
	}
	raw, err := os.ReadFile(packed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte{0x04, 0x22, 0x4d, 0x18}) {
		t.Errorf("packed file does not start with an LZ4 frame: % x", raw[:4])
	}

	unpacked := filepath.Join(dir, "duo.yaml")
	if err := pack(packed, unpacked, false); err != nil {
		t.Fatalf("unpack: %v", err)
	}
	snap, err := snapshot.Open(unpacked)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if snap.Name != "duo" || len(snap.Roots) != 2 {
		t.Errorf("snapshot = %q with %d roots", snap.Name, len(snap.Roots))
	}
}

func TestPrintInfo(t *testing.T) {
	var buf bytes.Buffer
	printInfo(&buf, openDuo(t))
	out := buf.String()
	for _, want := range []string{"duo", "hero", "lamp", "idle", "generic"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintPaths(t *testing.T) {
	snap := openDuo(t)
	res, err := convert.ConvertGameObject(snap.Roots[0], convert.Options{})
	if err != nil {
		t.Fatalf("ConvertGameObject: %v", err)
	}
	var buf bytes.Buffer
	printPaths(&buf, res.Index)
	if !strings.Contains(buf.String(), "hero/body") {
		t.Errorf("paths output missing hero/body:\n%s", buf.String())
	}
}

func TestPrintDiagnosticsSkipsClean(t *testing.T) {
	var buf bytes.Buffer
	printDiagnostics(&buf, "hero", &convert.Diagnostics{})
	if buf.Len() != 0 {
		t.Errorf("expected no output for a clean pass, got %q", buf.String())
	}
}

func TestConvertLogsUnderOneName(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "convert.log")
	if err := logger.InitWithFileConfig("info", logger.FileConfig{Path: logFile, MaxSizeMB: 1}, false); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		logger.Log = zap.NewNop()
		logger.Sugar = logger.Log.Sugar()
	})

	snap := openDuo(t)
	if _, err := convert.ConvertGameObject(snap.Roots[0], convertOptions(imaging.PNG, nil)); err != nil {
		t.Fatalf("ConvertGameObject: %v", err)
	}
	logger.Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	out := string(content)
	if !strings.Contains(out, "convert") || !strings.Contains(out, "conversion finished") {
		t.Errorf("log = %q, want a convert entry", out)
	}
	if strings.Contains(out, "convert.convert") {
		t.Errorf("logger named twice: %q", out)
	}
}

func TestCyclicSnapshotConverts(t *testing.T) {
	in := `gameObjects: [{id: 1, name: a, transform: 10}, {id: 2, name: b, transform: 11}]
transforms:
  - {id: 10, gameObject: 1, children: [11]}
  - {id: 11, gameObject: 2, children: [10]}`
	snap, err := snapshot.Read(strings.NewReader(in), "")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(snap.Roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(snap.Roots))
	}
	res, err := convert.ConvertGameObject(snap.Roots[0], convert.Options{Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("ConvertGameObject: %v", err)
	}
	if res.Bundle.Tree.Len() != 2 {
		t.Errorf("frames = %d, want 2", res.Bundle.Tree.Len())
	}
	if _, ok := res.Bundle.Tree.FindByPath("a/b"); !ok {
		t.Error("a/b not found")
	}
}
