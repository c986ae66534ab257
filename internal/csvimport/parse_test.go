package csvimport

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "plain", line: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "quoted comma", line: `a,"b,c",d`, want: []string{"a", "b,c", "d"}},
		{name: "escaped quote", line: `"a""b",c`, want: []string{`a"b`, "c"}},
		{name: "trailing empty field", line: "a,b,", want: []string{"a", "b", ""}},
		{name: "empty line", line: "", want: []string{""}},
		{name: "only comma", line: ",", want: []string{"", ""}},
		{name: "quotes mid field", line: `ab"c,d"e,f`, want: []string{"abc,de", "f"}},
		{name: "unterminated quote absorbs rest", line: `a,"b,c`, want: []string{"a", "b,c"}},
		{name: "unicode", line: "Ásha,日本", want: []string{"Ásha", "日本"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLine(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestParse_Scenario(t *testing.T) {
	rows := Parse("name,rollNo\nAsha,101\nRavi,102\n")

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	want := []map[string]string{
		{"name": "Asha", "rollNo": "101"},
		{"name": "Ravi", "rollNo": "102"},
	}
	for i, row := range rows {
		if !reflect.DeepEqual(row.Map(), want[i]) {
			t.Errorf("row %d = %v, want %v", i, row.Map(), want[i])
		}
		if !reflect.DeepEqual(row.Keys(), []string{"name", "rollNo"}) {
			t.Errorf("row %d keys = %v, want header order", i, row.Keys())
		}
	}
	if rows[0].Line != 2 || rows[1].Line != 3 {
		t.Errorf("line numbers = %d,%d, want 2,3", rows[0].Line, rows[1].Line)
	}
}

func TestParse_RowAndKeyCounts(t *testing.T) {
	text := " id , name ,credits\r\n1,Algebra,4\r\n2,\"Physics, Lab\",3\r\n3,Art,2\r\n"
	rows := Parse(text)

	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if row.Len() != 3 {
			t.Errorf("row %d has %d keys, want 3", i, row.Len())
		}
		if !reflect.DeepEqual(row.Keys(), []string{"id", "name", "credits"}) {
			t.Errorf("row %d keys = %v", i, row.Keys())
		}
	}
	if got := rows[1].Value("name"); got != "Physics, Lab" {
		t.Errorf("quoted cell = %q, want %q", got, "Physics, Lab")
	}
}

func TestParse_BlankLinesSkipped(t *testing.T) {
	rows := Parse("name,rollNo\nAsha,101\n\n   \nRavi,102")

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[1].Line != 5 {
		t.Errorf("second row line = %d, want 5", rows[1].Line)
	}
}

func TestParse_MissingAndExtraCells(t *testing.T) {
	rows := Parse("a,b,c\n1\n1,2,3,4\n")

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if got := rows[0].Map(); !reflect.DeepEqual(got, map[string]string{"a": "1", "b": "", "c": ""}) {
		t.Errorf("short row = %v", got)
	}
	if got := rows[1].Map(); !reflect.DeepEqual(got, map[string]string{"a": "1", "b": "2", "c": "3"}) {
		t.Errorf("long row = %v", got)
	}
}

func TestParse_SingleEmptyCellLineSkipped(t *testing.T) {
	rows := Parse("a,b\n\"\"\n1,2\n")
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "\n\n", "  \r\n"} {
		rows := Parse(text)
		if rows == nil || len(rows) != 0 {
			t.Errorf("Parse(%q) = %v, want empty non-nil slice", text, rows)
		}
	}
}

func TestParse_UnterminatedQuoteIsPermissive(t *testing.T) {
	rows := Parse("a,b\n\"x,y\n1,2\n")

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if got := rows[0].Value("a"); got != "x,y" {
		t.Errorf("a = %q, want %q", got, "x,y")
	}
	if got := rows[1].Value("b"); got != "2" {
		t.Errorf("next line b = %q, want %q", got, "2")
	}
}

func TestParseStrict(t *testing.T) {
	if _, err := ParseStrict("a,b\n1,2\n"); err != nil {
		t.Fatalf("ParseStrict well-formed: %v", err)
	}

	_, err := ParseStrict("a,b\n1,2\n\"x,y\n")
	if !errors.Is(err, ErrUnterminatedQuote) {
		t.Fatalf("err = %v, want ErrUnterminatedQuote", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Line != 3 {
		t.Errorf("err = %#v, want ParseError on line 3", err)
	}
}

func TestSerializeTemplate(t *testing.T) {
	headers := []string{"name", "rollNo", "program"}

	if got := SerializeTemplate(headers); got != "name,rollNo,program\n" {
		t.Errorf("SerializeTemplate = %q", got)
	}

	if rows := Parse(SerializeTemplate(headers)); len(rows) != 0 {
		t.Errorf("template round trip produced %d rows, want 0", len(rows))
	}
}

func TestSerializeTemplate_QuotesSpecialHeaders(t *testing.T) {
	headers := []string{"room, wing", `size "sq ft"`, "plain"}
	line := SerializeTemplate(headers)

	if got := SplitLine(line[:len(line)-1]); !reflect.DeepEqual(got, headers) {
		t.Errorf("SplitLine(SerializeTemplate) = %q, want %q", got, headers)
	}
}

func TestFields_MarshalJSONKeepsOrder(t *testing.T) {
	rows := Parse("zeta,alpha,mid\n1,2,3\n")

	got, err := rows[0].MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(got) != `{"zeta":"1","alpha":"2","mid":"3"}` {
		t.Errorf("MarshalJSON = %s", got)
	}
}
