package filename

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		class    string
		exported string
		ext      string
		want     string
	}{
		{
			name:     "app export without class",
			title:    "Mid-Term!! Exam",
			exported: "May 2 2018 02:14 PM",
			ext:      ".html",
			want:     "Mid_Term_Exam__20180502.html",
		},
		{
			name:     "web export with class",
			title:    "Unit 3 Quiz",
			class:    "Period 2",
			exported: "2019-09-18 00:00:00",
			ext:      ".xlsx",
			want:     "Unit_3_Quiz_Period_2_20190918.xlsx",
		},
		{
			name:     "slash date",
			title:    "Quiz",
			exported: "09/18/2019",
			ext:      ".json",
			want:     "Quiz__20190918.json",
		},
		{
			name:     "slash date with time",
			title:    "Quiz",
			exported: "9/8/2019 10:00",
			ext:      ".json",
			want:     "Quiz__20190908.json",
		},
		{
			name:     "full month name",
			title:    "Final",
			exported: "September 18, 2019 9:00 AM",
			ext:      ".html",
			want:     "Final__20190918.html",
		},
		{
			name:     "empty title",
			title:    "   ",
			exported: "2018-05-02",
			ext:      ".html",
			want:     "ZipGradeReport__20180502.html",
		},
		{
			name:     "punctuation only title",
			title:    "!!!",
			exported: "May 2 2018 02:14 PM",
			ext:      ".html",
			want:     "ZipGradeReport__20180502.html",
		},
		{
			name:     "cyrillic title",
			title:    "Контрольная работа",
			exported: "May 2 2018 02:14 PM",
			ext:      ".html",
			want:     "Контрольная_работа__20180502.html",
		},
		{
			name:     "accented title",
			title:    "Période",
			class:    "5ème B",
			exported: "2018-05-02",
			ext:      ".html",
			want:     "Période_5ème_B_20180502.html",
		},
		{
			name:     "punctuation only class",
			title:    "Quiz",
			class:    "--",
			exported: "2018-05-02",
			ext:      ".html",
			want:     "Quiz__20180502.html",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derive(tt.title, tt.class, tt.exported, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveUnrecognizedDate(t *testing.T) {
	for _, s := range []string{"", "Foo 02 2018", "yesterday", "2018-13-02", "May xx 2018", "2018-05"} {
		t.Run(s, func(t *testing.T) {
			_, err := Derive("Quiz", "", s, ".html")
			var de *UnrecognizedDateFormatError
			require.True(t, errors.As(err, &de), "got %v", err)
		})
	}
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "ZipGradeReport.xlsx", Fallback(".xlsx"))
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"Mid-Term!! Exam":   "Mid_Term_Exam",
		"  leading":         "leading",
		"trailing?!":        "trailing",
		"a__b":              "a_b",
		"Période 1":         "Période_1",
		"Тест №2":           "Тест_2",
		"":                  "",
		"already_clean_123": "already_clean_123",
	}
	for in, want := range tests {
		assert.Equal(t, want, Sanitize(in), "Sanitize(%q)", in)
	}
}
