package datanorm

import "testing"

func TestParseCSV_QuotedNewlineStaysInField(t *testing.T) {
	rows := ParseCSV("name,notes\nAnn,\"line one\nline two\"\nBob,short\n")

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(rows), rows)
	}
	if got := rows[0]["notes"]; got != "line one\nline two" {
		t.Errorf("notes = %q, want %q", got, "line one\nline two")
	}
	if got := rows[1]["name"]; got != "Bob" {
		t.Errorf("second row name = %q, want Bob", got)
	}
}

func TestParseCSV_EscapedQuotes(t *testing.T) {
	rows := ParseCSV("quote\n\"She said \"\"hi\"\"\"\n")

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if got := rows[0]["quote"]; got != `She said "hi"` {
		t.Errorf("quote = %q, want %q", got, `She said "hi"`)
	}
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Row
	}{
		{
			name:  "crlf terminators",
			input: "a,b\r\n1,2\r\n3,4\r\n",
			want:  []Row{{"a": "1", "b": "2"}, {"a": "3", "b": "4"}},
		},
		{
			name:  "bare carriage return",
			input: "a,b\r1,2",
			want:  []Row{{"a": "1", "b": "2"}},
		},
		{
			name:  "empty rows dropped",
			input: "a,b\n,\n\n1,2\n , \n",
			want:  []Row{{"a": "1", "b": "2"}},
		},
		{
			name:  "missing trailing cells",
			input: "a,b,c\n1\n",
			want:  []Row{{"a": "1", "b": "", "c": ""}},
		},
		{
			name:  "fields and headers trimmed",
			input: " a , b \n 1 ,  2 \n",
			want:  []Row{{"a": "1", "b": "2"}},
		},
		{
			name:  "comma inside quotes",
			input: "a,b\n\"x, y\",z\n",
			want:  []Row{{"a": "x, y", "b": "z"}},
		},
		{
			name:  "quoted empty field",
			input: "a,b\n\"\",z\n",
			want:  []Row{{"a": "", "b": "z"}},
		},
		{
			name:  "byte order mark stripped",
			input: "\ufeffemail,state\nann@example.com,NSW",
			want:  []Row{{"email": "ann@example.com", "state": "NSW"}},
		},
		{
			name:  "unbalanced quote swallows the rest",
			input: "a,b\n1,\"open\n2,3\n",
			want:  []Row{{"a": "1", "b": "open\n2,3"}},
		},
		{
			name:  "utf8 passes through",
			input: "name\n\"Zoë, 李\"\n",
			want:  []Row{{"name": "Zoë, 李"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCSV(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseCSV(%q) returned %d rows, want %d: %v", tt.input, len(got), len(tt.want), got)
			}
			for i := range tt.want {
				for k, v := range tt.want[i] {
					if got[i][k] != v {
						t.Errorf("row %d [%q] = %q, want %q", i, k, got[i][k], v)
					}
				}
				if len(got[i]) != len(tt.want[i]) {
					t.Errorf("row %d has %d keys, want %d", i, len(got[i]), len(tt.want[i]))
				}
			}
		})
	}
}

func TestParseCSV_NeedsHeaderAndData(t *testing.T) {
	for _, input := range []string{"", "a,b\n", "a,b\n,\n", "\n\n"} {
		if rows := ParseCSV(input); len(rows) != 0 {
			t.Errorf("ParseCSV(%q) = %v, want no rows", input, rows)
		}
	}
}

func TestHeaders(t *testing.T) {
	got := Headers("\n First Name ,Email\nAnn,a@x.com\n")
	if len(got) != 2 || got[0] != "First Name" || got[1] != "Email" {
		t.Errorf("Headers = %q", got)
	}
	if Headers("") != nil {
		t.Error("expected nil headers for empty input")
	}
}
