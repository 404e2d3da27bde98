package normalize

import "testing"

func TestToInt(t *testing.T) {
	cases := []struct {
		in      any
		want    int64
		valid   bool
		wantErr bool
	}{
		{in: 1500.0, want: 1500, valid: true},
		{in: "42", want: 42, valid: true},
		{in: 1.5, wantErr: true},
		{in: nil},
		{in: "-"},
		{in: []any{1.0}, wantErr: true},
		{in: 9223372036854775807.0, wantErr: true},
		{in: -9223372036854775808.0, want: -9223372036854775808, valid: true},
		{in: 9223372036854774784.0, want: 9223372036854774784, valid: true},
	}
	for _, c := range cases {
		got, err := toInt(c.in)
		if (err != nil) != c.wantErr {
			t.Fatalf("toInt(%v) err=%v wantErr=%v", c.in, err, c.wantErr)
		}
		if got.Valid != c.valid || (c.valid && got.Int64 != c.want) {
			t.Fatalf("toInt(%v) = %+v, want valid=%v %d", c.in, got, c.valid, c.want)
		}
	}
}

func TestToTime_Epochs(t *testing.T) {
	sec, err := toTime(1704225600.0)
	if err != nil || sec.Time.Unix() != 1704225600 {
		t.Fatalf("seconds epoch: %+v err=%v", sec, err)
	}
	ms, err := toTime(1704225600000.0)
	if err != nil || ms.Time.Unix() != 1704225600 {
		t.Fatalf("milliseconds epoch: %+v err=%v", ms, err)
	}
	if _, err := toTime("not a date"); err == nil {
		t.Fatalf("expected error for garbage date")
	}
}

func TestToString_Scalars(t *testing.T) {
	if s, err := toString(12345.0); err != nil || s.String != "12345" {
		t.Fatalf("number -> %+v err=%v", s, err)
	}
	if s, err := toString("  None "); err != nil || s.Valid {
		t.Fatalf("placeholder -> %+v err=%v", s, err)
	}
	if _, err := toString(map[string]any{"a": 1}); err == nil {
		t.Fatalf("expected error for object")
	}
}
