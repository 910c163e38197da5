package assets

import "testing"

func newTransform(name string) *Transform {
	g := &GameObject{Name: name}
	t := &Transform{GameObject: g}
	g.Transform = t
	return t
}

func TestPathByFather(t *testing.T) {
	root := newTransform("root")
	spine := newTransform("spine")
	arm := newTransform("arm")
	root.AddChild(spine)
	spine.AddChild(arm)

	tests := []struct {
		tr   *Transform
		want string
	}{
		{root, "root"},
		{spine, "root/spine"},
		{arm, "root/spine/arm"},
	}
	for _, tt := range tests {
		if got := tt.tr.PathByFather(); got != tt.want {
			t.Errorf("PathByFather() = %q, want %q", got, tt.want)
		}
	}
	if arm.Father != spine || len(spine.Children) != 1 {
		t.Error("AddChild did not link both directions")
	}
}

func TestAddChildRejectsBadLinks(t *testing.T) {
	root := newTransform("root")
	spine := newTransform("spine")
	arm := newTransform("arm")
	if err := root.AddChild(spine); err != nil {
		t.Fatalf("AddChild(spine): %v", err)
	}
	if err := spine.AddChild(arm); err != nil {
		t.Fatalf("AddChild(arm): %v", err)
	}

	tests := []struct {
		name   string
		father *Transform
		child  *Transform
		want   error
	}{
		{"second father", root, arm, ErrHasFather},
		{"self", root, root, ErrTransformCycle},
		{"descendant as father", arm, root, ErrTransformCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.father.AddChild(tt.child); err != tt.want {
				t.Errorf("AddChild() = %v, want %v", err, tt.want)
			}
		})
	}
	if len(root.Children) != 1 || len(arm.Children) != 0 || root.Father != nil || arm.Father != spine {
		t.Error("a refused link changed the hierarchy")
	}
}

func TestTransformNameWithoutGameObject(t *testing.T) {
	var nilTr *Transform
	if nilTr.Name() != "" {
		t.Error("nil transform has a name")
	}
	if (&Transform{}).Name() != "" {
		t.Error("detached transform has a name")
	}
}

func TestClassIDString(t *testing.T) {
	tests := []struct {
		id   ClassID
		want string
	}{
		{ClassTransform, "Transform"},
		{ClassSkinnedMeshRenderer, "SkinnedMeshRenderer"},
		{ClassID(999), "Unknown(999)"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestAvatarFindBonePath(t *testing.T) {
	a := &Avatar{TOS: map[uint32]string{1: "spine", 2: "spine/arm"}}
	if got := a.FindBonePath(2); got != "spine/arm" {
		t.Errorf("FindBonePath(2) = %q", got)
	}
	if got := a.FindBonePath(3); got != "" {
		t.Errorf("FindBonePath(3) = %q, want empty", got)
	}
	var none *Avatar
	if got := none.FindBonePath(1); got != "" {
		t.Errorf("nil avatar FindBonePath = %q", got)
	}
}

func TestMeshGetUV(t *testing.T) {
	m := &Mesh{}
	m.UV[2] = []float32{1, 2}
	if m.GetUV(2) == nil || m.GetUV(0) != nil || m.GetUV(8) != nil || m.GetUV(-1) != nil {
		t.Error("GetUV returned wrong channels")
	}
}
