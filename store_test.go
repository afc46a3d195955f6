package grove

import "testing"

func TestStoreAddGetRoundTrip(t *testing.T) {
	s := NewStore(Kinds()...)
	s.Add(1, Text{Content: "hello", EntityKind: KindIdea})

	row, ok := s.Get(1, KindText)
	if !ok {
		t.Fatal("Get returned not found after Add")
	}
	if row.(Text).Content != "hello" {
		t.Errorf("Content = %q, want %q", row.(Text).Content, "hello")
	}
	if !s.Has(1, KindText) {
		t.Error("Has = false after Add")
	}
}

func TestStoreAddOverwrites(t *testing.T) {
	s := NewStore(Kinds()...)
	s.Add(1, Text{Content: "old"})
	prev, replaced := s.Add(1, Text{Content: "new"})
	if !replaced {
		t.Fatal("second Add did not report a replacement")
	}
	if prev.(Text).Content != "old" {
		t.Errorf("previous row Content = %q, want %q", prev.(Text).Content, "old")
	}
	row, _ := s.Get(1, KindText)
	if row.(Text).Content != "new" {
		t.Errorf("stored row Content = %q, want %q", row.(Text).Content, "new")
	}
	if s.CountOfKind(KindText) != 1 {
		t.Errorf("CountOfKind = %d, want 1 (no duplicate rows)", s.CountOfKind(KindText))
	}
}

func TestStoreRemoveThenAbsent(t *testing.T) {
	s := NewStore(Kinds()...)
	s.Add(1, Position{Index: 3})

	removed, ok := s.Remove(1, KindPosition)
	if !ok {
		t.Fatal("Remove reported no row")
	}
	if removed.(Position).Index != 3 {
		t.Errorf("removed row Index = %d, want 3", removed.(Position).Index)
	}
	if s.Has(1, KindPosition) {
		t.Error("Has = true after Remove")
	}
	if _, ok := s.Get(1, KindPosition); ok {
		t.Error("Get found a row after Remove")
	}
	if _, ok := s.Remove(1, KindPosition); ok {
		t.Error("second Remove reported a row")
	}
}

func TestStoreRemoveAllCascades(t *testing.T) {
	s := NewStore(Kinds()...)
	s.Add(7, Position{})
	s.Add(7, Text{})
	s.Add(7, Visual{})
	s.Add(8, Text{}) // different entity, must survive

	removed := s.RemoveAll(7)
	if len(removed) != 3 {
		t.Fatalf("RemoveAll removed %d kinds, want 3", len(removed))
	}
	for _, k := range Kinds() {
		if s.Has(7, k) {
			t.Errorf("entity 7 still owns %s", k)
		}
	}
	if !s.Has(8, KindText) {
		t.Error("RemoveAll touched another entity's row")
	}
}

func TestStoreEntitiesWithAndForEach(t *testing.T) {
	s := NewStore(Kinds()...)
	s.Add(1, Visual{Opacity: 0.5})
	s.Add(2, Visual{Opacity: 1})
	s.Add(3, Text{})

	ids := s.EntitiesWith(KindVisual)
	if len(ids) != 2 {
		t.Fatalf("EntitiesWith returned %d ids, want 2", len(ids))
	}

	count := 0
	s.ForEachOfKind(KindVisual, func(id Entity, row Component) {
		count++
		if _, ok := row.(Visual); !ok {
			t.Errorf("ForEachOfKind yielded a %T", row)
		}
	})
	if count != 2 {
		t.Errorf("ForEachOfKind visited %d rows, want 2", count)
	}
	if len(s.AllOfKind(KindVisual)) != 2 {
		t.Errorf("AllOfKind returned %d rows, want 2", len(s.AllOfKind(KindVisual)))
	}
}
