package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appHeader = "QuizName,QuizClass,FirstName,LastName,ZipGradeID,ExternalID,EarnedPts,PossiblePts," +
	"PercentCorrect,QuizCreated,DataExported,KeyVersion,Stu1,Key1,PossPt1,Points1,Stu12,Key12,PossPt12,Points12"

func TestNormalizeHeaderAppDialect(t *testing.T) {
	got := NormalizeHeader(appHeader, ',')
	want := "QuizName,QuizClass,FirstName,LastName,StudentID,CustomID,Earned Points,Possible Points," +
		"PercentCorrect,QuizCreated,DataExported,Key Version,Stu1,PriKey1,Mark1,Points1,Stu12,PriKey12,Mark12,Points12"
	assert.Equal(t, want, got)
}

func TestNormalizeHeaderWebDialectUnchanged(t *testing.T) {
	header := webHeader(3)
	assert.Equal(t, header, NormalizeHeader(header, ','))
}

func TestNormalizeHeaderIdempotent(t *testing.T) {
	once := NormalizeHeader(appHeader, ',')
	assert.Equal(t, once, NormalizeHeader(once, ','))
}

func TestNormalizeHeaderWholeTokensOnly(t *testing.T) {
	// "KeyVersion" must not become "PriKeyVersion", and tokens that merely
	// contain a dialect name are left alone.
	header := "ZipGradeID,KeyVersion,MyKey1,Key1Extra,HotKey,Key7"
	got := strings.Split(NormalizeHeader(header, ','), ",")
	assert.Equal(t, []string{"StudentID", "Key Version", "MyKey1", "Key1Extra", "HotKey", "PriKey7"}, got)
}

func TestNormalizeHeaderOrderIndependent(t *testing.T) {
	a := NormalizeHeader("ZipGradeID,Key1,KeyVersion,EarnedPts", ',')
	b := NormalizeHeader("EarnedPts,KeyVersion,Key1,ZipGradeID", ',')
	assert.ElementsMatch(t, strings.Split(a, ","), strings.Split(b, ","))
}

func TestNormalizeHeaderQuotedTokens(t *testing.T) {
	got := NormalizeHeader(`"ZipGradeID","Key2"`, ',')
	assert.Equal(t, "StudentID,PriKey2", got)
	assert.True(t, IsAppDialect(`"ZipGradeID"`, ','))
}

func TestNormalizeHeaderOtherDelimiter(t *testing.T) {
	got := NormalizeHeader("ZipGradeID\tKey3\tPossPt3", '\t')
	assert.Equal(t, "StudentID\tPriKey3\tMark3", got)
}

func TestAppHeaderParses(t *testing.T) {
	h, err := ParseHeader(appHeader, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, h.NumQuestions)
	assert.Equal(t, []int{1, 12}, h.keys)
}

func TestNeitherDialect(t *testing.T) {
	_, err := ParseHeader("Name,Score,Q1,Q2", DefaultOptions())
	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, FieldQuizName, mfe.Field)
}
