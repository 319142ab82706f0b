package balance

import "testing"

func TestNewManager(t *testing.T) {
	m := NewManager(25)
	if m.Current() != 25 {
		t.Errorf("Current() = %d, want 25", m.Current())
	}
}

func TestApply(t *testing.T) {
	m := NewManager(25)
	m.Apply(19)
	if m.Current() != 19 {
		t.Errorf("Current() = %d, want 19", m.Current())
	}
}

func TestApplyFromField(t *testing.T) {
	t.Run("numeric", func(t *testing.T) {
		m := NewManager(25)
		if !m.ApplyFromField("42") {
			t.Fatal("ApplyFromField(\"42\") returned false")
		}
		if m.Current() != 42 {
			t.Errorf("Current() = %d, want 42", m.Current())
		}
	})

	t.Run("padded numeric", func(t *testing.T) {
		m := NewManager(25)
		if !m.ApplyFromField(" 7 ") {
			t.Fatal("ApplyFromField returned false for padded numeric")
		}
		if m.Current() != 7 {
			t.Errorf("Current() = %d, want 7", m.Current())
		}
	})

	t.Run("non-numeric leaves state unchanged", func(t *testing.T) {
		m := NewManager(25)
		if m.ApplyFromField("abc") {
			t.Fatal("ApplyFromField(\"abc\") returned true")
		}
		if m.Current() != 25 {
			t.Errorf("Current() = %d, want unchanged 25", m.Current())
		}
	})

	t.Run("empty leaves state unchanged", func(t *testing.T) {
		m := NewManager(25)
		if m.ApplyFromField("") {
			t.Fatal("ApplyFromField(\"\") returned true")
		}
		if m.Current() != 25 {
			t.Errorf("Current() = %d, want unchanged 25", m.Current())
		}
	})
}

// Completion order decides the final value, regardless of which operation
// was issued first.
func TestLastAppliedWins(t *testing.T) {
	m := NewManager(25)
	m.Apply(19) // op A, issued first but finished first
	m.Apply(30) // op B, issued later, finished last
	if m.Current() != 30 {
		t.Errorf("Current() = %d, want 30 (last applied)", m.Current())
	}
}

func TestListen(t *testing.T) {
	m := NewManager(25)
	var got []int
	m.Listen(func(v int) { got = append(got, v) })

	m.Apply(10)
	m.ApplyFromField("11")
	m.ApplyFromField("nope")

	if len(got) != 2 || got[0] != 10 || got[1] != 11 {
		t.Errorf("listener saw %v, want [10 11]", got)
	}
}
