package document

import (
	"encoding/json"
	"testing"
)

func TestNew_CopiesSource(t *testing.T) {
	src := map[string]any{"title": "lamp"}
	d := New("P0001", src)
	src["title"] = "changed"

	if d.Source()["title"] != "lamp" {
		t.Errorf("source was not copied: %v", d.Source())
	}
	if d.ID() != "P0001" {
		t.Errorf("ID() = %q", d.ID())
	}
}

func TestMarshalJSON_RendersSource(t *testing.T) {
	d := New("P0001", map[string]any{"productId": "P0001", "price": 9.5})
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["productId"] != "P0001" || got["price"] != 9.5 {
		t.Errorf("unexpected JSON %s", b)
	}
}

func TestMarshalJSON_NilSource(t *testing.T) {
	b, err := json.Marshal(Document{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "{}" {
		t.Errorf("got %s, want {}", b)
	}
	if !(Document{}).IsZero() {
		t.Error("zero document should report IsZero")
	}
}
