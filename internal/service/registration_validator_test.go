package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistrationSuccess(t *testing.T) {
	res := ParseRegistration("2 1 山田 太郎")
	require.True(t, res.OK())
	assert.Equal(t, RegistrationData{Grade: 2, ClassNumber: 1, LastName: "山田", FirstName: "太郎"}, *res.Data)
	assert.Empty(t, res.Err)
}

func TestParseRegistrationNormalisesSpacingAndWidth(t *testing.T) {
	res := ParseRegistration("  ３　１２   佐藤　ハナコ ")
	require.True(t, res.OK())
	assert.Equal(t, 3, res.Data.Grade)
	assert.Equal(t, 12, res.Data.ClassNumber)
	assert.Equal(t, "佐藤", res.Data.LastName)
	assert.Equal(t, "ハナコ", res.Data.FirstName)
}

func TestParseRegistrationFieldCount(t *testing.T) {
	for _, input := range []string{"", "2", "2 1 山田", "2 1 山田 太郎 次郎", "2年1組山田太郎"} {
		res := ParseRegistration(input)
		assert.False(t, res.OK(), input)
		assert.Equal(t, msgFieldCount, res.Err, input)
	}
}

func TestParseRegistrationGrade(t *testing.T) {
	for _, input := range []string{"0 1 山田 太郎", "4 1 山田 太郎", "４ A 山田 太郎", "2年 1 山田 太郎", "-1 1 山田 太郎", "二 1 山田 太郎"} {
		res := ParseRegistration(input)
		assert.False(t, res.OK(), input)
		assert.Equal(t, msgGradeInvalid, res.Err, input)
	}
}

func TestParseRegistrationClass(t *testing.T) {
	for _, input := range []string{"2 A 山田 太郎", "2 1組 山田 太郎", "2 0 山田 太郎", "2 99999999999999999999 山田 太郎"} {
		res := ParseRegistration(input)
		assert.False(t, res.OK(), input)
		assert.Equal(t, msgClassInvalid, res.Err, input)
	}
}

func TestParseRegistrationNames(t *testing.T) {
	res := ParseRegistration("2 1 山田1 太郎")
	assert.False(t, res.OK())
	assert.Equal(t, "姓（山田1）に数字や記号を含めることはできません。文字のみで入力してください。", res.Err)

	res = ParseRegistration("2 1 山田 太郎!")
	assert.False(t, res.OK())
	assert.Equal(t, "名（太郎!）に数字や記号を含めることはできません。文字のみで入力してください。", res.Err)

	res = ParseRegistration("2 1 Smith John")
	assert.True(t, res.OK())

	res = ParseRegistration("2 1 ローー ひかり")
	assert.True(t, res.OK())
}
