package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ana Horvat", "Ana Horvat"},
		{"  Ana Horvat  ", "Ana Horvat"},
		{"UPPERCASE NAME", "UPPERCASE NAME"}, // Name preserves case
		{"<b>Ana</b>", "Ana"},
		{"<script>alert(1)</script>Ana", "Ana"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTaskName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Water bottle", "Water bottle"},
		{"  cup ", "cup"},
		{"<i>pen</i>", "pen"},
		{"salt & pepper", "salt & pepper"}, // entities unescaped back to text
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := TaskName(tt.input)
			if got != tt.want {
				t.Errorf("TaskName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGroupTag(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4A", "4A"},
		{"  4A  ", "4A"},
		{"room   12", "room 12"},
		{"<b>4A</b>", "4A"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := GroupTag(tt.input)
			if got != tt.want {
				t.Errorf("GroupTag(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"teacher", "teacher"},
		{"TEACHER", "teacher"},
		{"  Student  ", "student"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Role(tt.input)
			if got != tt.want {
				t.Errorf("Role(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
