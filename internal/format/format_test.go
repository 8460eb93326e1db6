package format

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"testing"
)

var idempotenceInputs = []string{
	"",
	"\n",
	"# only a comment\n",
	"# comment\n\n   \n#another\n",
	"Model A  [desc]  ->  false\nModel B  12345678  ->  true\n",
	"# comment\n\nModel A  desc\n",
	"Model A  [x]  a\nModel B  b\n",
	"solo\n",
	"a  b\nccc\n  dd    [e]   f  \n",
	"a\r\nb  [c]  d\r\n",
	"no trailing newline  [x]  y",
	"\tModel\t  [tab\tinside]  v\n",
	"Ünïcödé  [é]  x\nplain  [ü]  y\n",
	"模型  [注释]  值\nab  [c]  d\n",
	"[starts]  with  bracket\nnext  [one]  two\n",
	"x  [a]\ny  [bb]  z  extra  columns  here\n",
	"   \n\t\n",
	"#\n#  \n",
}

func TestScenarioArrowColumnAligned(t *testing.T) {
	lines := []Line{
		Record("Model A", "[desc]", "->", "false"),
		Record("Model B", "12345678", "->", "true"),
	}
	out := string(Render(lines, ColumnWidths(lines, WidthGraphemes), WidthGraphemes))
	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %q", out)
	}
	if a, b := strings.Index(rows[0], "->"), strings.Index(rows[1], "->"); a != b {
		t.Fatalf("arrows not aligned (%d vs %d):\n%s", a, b, out)
	}
}

func TestScenarioArrowInputShiftsPlaceholderRow(t *testing.T) {
	src := "Model A  [desc]  ->  false\nModel B  12345678  ->  true\n"

	lines := Parse(src)
	if got, want := strings.Join(lines[1].Fields, "|"), "Model B||12345678|->|true"; got != want {
		t.Fatalf("second row fields:\nwant %q\ngot  %q", want, got)
	}

	got, err := FormatString(src, Options{})
	if err != nil {
		t.Fatalf("FormatString: %v", err)
	}
	want := "Model A  [desc]  ->        false\n" +
		"Model B          12345678  ->     true\n"
	if got != want {
		t.Fatalf("FormatString mismatch:\nwant %q\ngot  %q", want, got)
	}
	// плейсхолдер сдвигает стрелку второй строки на одну колонку вправо
	rows := strings.Split(got, "\n")
	if a, b := strings.Index(rows[0], "->"), strings.Index(rows[1], "->"); a >= b {
		t.Fatalf("expected second arrow right of the first (%d vs %d)", a, b)
	}
}

func TestScenarioCommentAndBlankPreserved(t *testing.T) {
	got, err := FormatString("# comment\n\nModel A  desc\n", Options{})
	if err != nil {
		t.Fatalf("FormatString: %v", err)
	}
	want := "# comment\n\nModel A    desc\n"
	if got != want {
		t.Fatalf("FormatString mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestScenarioMissingAnnotationAligns(t *testing.T) {
	got, err := FormatString("Model A  [x]  a\nModel B  b\n", Options{})
	if err != nil {
		t.Fatalf("FormatString: %v", err)
	}
	want := "Model A  [x]  a\n" +
		"Model B       b\n"
	if got != want {
		t.Fatalf("FormatString mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestFormatIdempotent(t *testing.T) {
	for _, measure := range []Measure{WidthGraphemes, WidthRunes, WidthCells} {
		opt := Options{Measure: measure}
		for _, in := range idempotenceInputs {
			once, err := FormatString(in, opt)
			if err != nil {
				t.Fatalf("%s: first pass on %q: %v", measure, in, err)
			}
			twice, err := FormatString(once, opt)
			if err != nil {
				t.Fatalf("%s: second pass on %q: %v", measure, once, err)
			}
			if once != twice {
				t.Fatalf("%s: not idempotent for %q:\nonce  %q\ntwice %q", measure, in, once, twice)
			}
		}
	}
}

func TestFormatPreservesLineCount(t *testing.T) {
	for _, in := range idempotenceInputs {
		out, err := FormatString(in, Options{})
		if err != nil {
			t.Fatalf("FormatString(%q): %v", in, err)
		}
		if want, got := len(Parse(in)), strings.Count(out, "\n"); want != got {
			t.Fatalf("line count for %q: want %d, got %d (%q)", in, want, got, out)
		}
	}
}

func TestFormatPreservesContent(t *testing.T) {
	for _, in := range idempotenceInputs {
		out, err := FormatString(in, Options{})
		if err != nil {
			t.Fatalf("FormatString(%q): %v", in, err)
		}
		before, after := Parse(in), Parse(out)
		for i := range before {
			if before[i].Kind != after[i].Kind || before[i].Text != after[i].Text {
				t.Fatalf("line %d of %q changed kind or text: %+v -> %+v", i+1, in, before[i], after[i])
			}
			if !slices.Equal(nonEmpty(before[i].Fields), nonEmpty(after[i].Fields)) {
				t.Fatalf("line %d of %q changed fields: %q -> %q", i+1, in, before[i].Fields, after[i].Fields)
			}
		}
	}
}

var fieldPattern = regexp.MustCompile(`[^ ]+(?: [^ ]+)*`)

func TestFormatAlignsEveryColumn(t *testing.T) {
	in := "alpha  [one]  ->  x\n" +
		"b  two  ->  yy\n" +
		"# interleaved comment\n" +
		"gamma-long  [three four]  =>  z  extra\n" +
		"d\n"
	out, err := FormatString(in, Options{})
	if err != nil {
		t.Fatalf("FormatString: %v", err)
	}

	starts := map[int]int{}
	for n, row := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if strings.HasPrefix(row, "#") {
			continue
		}
		fields := Parse(row)[0].Fields
		found := fieldPattern.FindAllStringIndex(row, -1)
		col := 0
		for i, f := range fields {
			if f == "" {
				continue
			}
			start := found[col][0]
			col++
			if prev, ok := starts[i]; ok && prev != start {
				t.Fatalf("row %d column %d starts at %d, earlier rows at %d:\n%s", n+1, i, start, prev, out)
			}
			starts[i] = start
		}
	}
	if len(starts) != 5 {
		t.Fatalf("expected 5 aligned columns, got %v", starts)
	}
}

func TestFormatCommentsOnlyUnchanged(t *testing.T) {
	in := "# a\n\n#   b  c\n"
	got, err := FormatString(in, Options{})
	if err != nil {
		t.Fatalf("FormatString: %v", err)
	}
	if got != in {
		t.Fatalf("FormatString mismatch:\nwant %q\ngot  %q", in, got)
	}

	got, err = FormatString("  # a   \n \t \n", Options{})
	if err != nil {
		t.Fatalf("FormatString: %v", err)
	}
	if want := "# a\n\n"; got != want {
		t.Fatalf("FormatString mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestFormatRejectsTooManyFields(t *testing.T) {
	in := "ok  [a]  b\n# note\nbad  [a]  b  c  d  e\n"
	out, err := Format([]byte(in), Options{MaxFields: 5})
	if err == nil {
		t.Fatalf("expected error, got output %q", out)
	}
	if out != nil {
		t.Fatalf("expected no output on error, got %q", out)
	}
	if !errors.Is(err, ErrUnexpectedFieldCount) {
		t.Fatalf("expected ErrUnexpectedFieldCount, got %v", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %T", err)
	}
	if fe.Line != 3 || fe.Fields != 6 || fe.Limit != 5 {
		t.Fatalf("unexpected error details: %+v", fe)
	}
	if fe.Content != "bad  [a]  b  c  d  e" {
		t.Fatalf("unexpected content %q", fe.Content)
	}
}

func TestFormatMaxFieldsCountsPlaceholder(t *testing.T) {
	// "a  b  c" normalizes to four fields.
	if _, err := Format([]byte("a  b  c\n"), Options{MaxFields: 3}); !errors.Is(err, ErrUnexpectedFieldCount) {
		t.Fatalf("expected ErrUnexpectedFieldCount, got %v", err)
	}
	if _, err := Format([]byte("a  b  c\n"), Options{MaxFields: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOptionsFingerprint(t *testing.T) {
	a := Options{}.Fingerprint()
	b := Options{Measure: WidthCells}.Fingerprint()
	c := Options{MaxFields: -3}.Fingerprint()
	if a == b {
		t.Fatal("different measures must have different fingerprints")
	}
	if a != c {
		t.Fatal("negative MaxFields must behave as unlimited")
	}
}

func FuzzFormatIdempotent(f *testing.F) {
	for _, in := range idempotenceInputs {
		f.Add(in)
	}
	f.Fuzz(func(t *testing.T, in string) {
		once, err := FormatString(in, Options{})
		if err != nil {
			t.Fatalf("unlimited field count must not fail: %v", err)
		}
		twice, err := FormatString(once, Options{})
		if err != nil {
			t.Fatalf("second pass: %v", err)
		}
		if once != twice {
			t.Fatalf("not idempotent for %q:\nonce  %q\ntwice %q", in, once, twice)
		}
	})
}

func nonEmpty(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
