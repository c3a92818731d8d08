package chapters

import (
	"errors"
	"net/url"
	"strconv"
)

// IntroductionToken is the route segment for ordinal 0. The literal "0" is
// never a valid token.
const IntroductionToken = "introduction"

var ErrInvalidToken = errors.New("invalid chapter token")

// Token returns the canonical route segment for ordinal.
func Token(ordinal int) string {
	if ordinal == 0 {
		return IntroductionToken
	}
	return strconv.Itoa(ordinal)
}

// ParseToken is the inverse of Token. It accepts only canonical forms, so
// ParseToken(Token(n)) == n and Token(ParseToken(t)) == t for every valid t.
func ParseToken(token string) (int, error) {
	if token == IntroductionToken {
		return 0, nil
	}
	if token == "" || token[0] < '1' || token[0] > '9' {
		return 0, ErrInvalidToken
	}
	n, err := strconv.Atoi(token)
	if err != nil || n <= 0 {
		return 0, ErrInvalidToken
	}
	return n, nil
}

// Route builds the reader path for a chapter of a book.
func Route(bookID string, ordinal int) string {
	return "/book/" + url.PathEscape(bookID) + "/" + Token(ordinal)
}
