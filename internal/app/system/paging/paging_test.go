package paging

import "testing"

func makeRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func TestTrimPage_Forward(t *testing.T) {
	// Short first page: nothing on either side.
	rows := makeRows(3)
	res := TrimPage(&rows, "", "")
	if res.HasPrev || res.HasNext {
		t.Errorf("short first page: HasPrev=%v HasNext=%v, want false/false", res.HasPrev, res.HasNext)
	}
	if len(rows) != 3 {
		t.Errorf("rows trimmed to %d, want 3", len(rows))
	}

	// Full look-ahead fetch: the extra row signals a next page.
	rows = makeRows(PageSize + 1)
	res = TrimPage(&rows, "", "")
	if !res.HasNext || res.HasPrev {
		t.Errorf("full first page: HasPrev=%v HasNext=%v, want false/true", res.HasPrev, res.HasNext)
	}
	if len(rows) != PageSize {
		t.Errorf("rows trimmed to %d, want %d", len(rows), PageSize)
	}
	if rows[len(rows)-1] != PageSize-1 {
		t.Error("forward trim dropped the wrong end")
	}

	// Forward from a cursor: a previous page exists.
	rows = makeRows(5)
	res = TrimPage(&rows, "", "some-cursor")
	if !res.HasPrev || res.HasNext {
		t.Errorf("after cursor: HasPrev=%v HasNext=%v, want true/false", res.HasPrev, res.HasNext)
	}
}

func TestTrimPage_Backward(t *testing.T) {
	// Going backwards the extra row is at the front.
	rows := makeRows(PageSize + 1)
	res := TrimPage(&rows, "some-cursor", "")
	if !res.HasPrev || !res.HasNext {
		t.Errorf("backward full page: HasPrev=%v HasNext=%v, want true/true", res.HasPrev, res.HasNext)
	}
	if len(rows) != PageSize {
		t.Errorf("rows trimmed to %d, want %d", len(rows), PageSize)
	}
	if rows[0] != 1 {
		t.Error("backward trim dropped the wrong end")
	}

	// A short backward page means we hit the front.
	rows = makeRows(4)
	res = TrimPage(&rows, "some-cursor", "")
	if res.HasPrev || !res.HasNext {
		t.Errorf("backward short page: HasPrev=%v HasNext=%v, want false/true", res.HasPrev, res.HasNext)
	}
}

func TestConfigureKeyset(t *testing.T) {
	cfg := ConfigureKeyset("", "")
	if cfg.Direction != Forward || cfg.SortOrder != 1 || cfg.Cursor != nil {
		t.Errorf("blank request: %+v", cfg)
	}

	cfg = ConfigureKeyset("garbage-cursor", "")
	if cfg.Direction != Backward || cfg.SortOrder != -1 {
		t.Errorf("before request: %+v", cfg)
	}
	// A bad cursor lands on page one rather than erroring.
	if cfg.Cursor != nil {
		t.Error("garbage cursor was decoded")
	}
}

func TestReverse(t *testing.T) {
	rows := []int{3, 2, 1}
	Reverse(rows)
	if rows[0] != 1 || rows[2] != 3 {
		t.Errorf("Reverse = %v", rows)
	}

	empty := []int{}
	Reverse(empty) // must not panic
}
