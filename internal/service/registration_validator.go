package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	msgFieldCount   = "入力された情報が不足しています。**学年・クラス・姓・名**をすべてスペース区切りで入力してください。"
	msgGradeInvalid = "学年は1から3の数字のみを入力してください。（例: '2'）"
	msgClassInvalid = "クラスは数字のみを入力してください。（例: 'A'ではなく'1'）"
	msgNameInvalid  = "%s（%s）に数字や記号を含めることはできません。文字のみで入力してください。"
)

var namePattern = regexp.MustCompile(`^[\p{Han}\p{Hiragana}\p{Katakana}ーa-zA-Z]+$`)

// RegistrationData is a parsed registration candidate.
type RegistrationData struct {
	Grade       int
	ClassNumber int
	LastName    string
	FirstName   string
}

// RegistrationResult is either parsed data or a user-facing validation message.
// Exactly one of Data and Err is set.
type RegistrationResult struct {
	Data *RegistrationData
	Err  string
}

// OK reports whether parsing succeeded.
func (r RegistrationResult) OK() bool {
	return r.Data != nil
}

func invalid(msg string) RegistrationResult {
	return RegistrationResult{Err: msg}
}

// ParseRegistration parses "grade class last first" free text. Ideographic
// spaces count as separators and full-width digits are accepted for grade
// and class. Names are returned unchanged.
func ParseRegistration(text string) RegistrationResult {
	parts := strings.Fields(strings.ReplaceAll(text, "　", " "))
	if len(parts) != 4 {
		return invalid(msgFieldCount)
	}

	grade, ok := parseDigits(parts[0])
	if !ok || grade < 1 || grade > 3 {
		return invalid(msgGradeInvalid)
	}

	class, ok := parseDigits(parts[1])
	if !ok || class < 1 {
		return invalid(msgClassInvalid)
	}

	lastName, firstName := parts[2], parts[3]
	if !namePattern.MatchString(lastName) {
		return invalid(fmt.Sprintf(msgNameInvalid, "姓", lastName))
	}
	if !namePattern.MatchString(firstName) {
		return invalid(fmt.Sprintf(msgNameInvalid, "名", firstName))
	}

	return RegistrationResult{Data: &RegistrationData{
		Grade:       grade,
		ClassNumber: class,
		LastName:    lastName,
		FirstName:   firstName,
	}}
}

// parseDigits folds full-width forms and accepts ASCII digits only.
func parseDigits(token string) (int, bool) {
	s := norm.NFKC.String(width.Narrow.String(token))
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
