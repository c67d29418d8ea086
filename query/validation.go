package query

import (
	"errors"
	"fmt"
)

// Validation constants to bound the work a single query can ask for
const (
	// MaxQueryLength is the maximum allowed query string length (64KB)
	MaxQueryLength = 64 * 1024

	// MaxTokens is the maximum number of tokens in a query
	MaxTokens = 1000

	// MaxExpressionDepth is the maximum nesting depth for predicates
	MaxExpressionDepth = 100
)

var (
	// ErrQueryTooLong is returned when query exceeds MaxQueryLength
	ErrQueryTooLong = errors.New("query too long")

	// ErrTooManyTokens is returned when query has too many tokens
	ErrTooManyTokens = errors.New("too many tokens in query")

	// ErrExpressionTooDeep is returned when predicate nesting exceeds limit
	ErrExpressionTooDeep = errors.New("expression nesting too deep")
)

// ValidateQuery checks the raw query text before tokenizing
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return &ParseError{
			Pos: MaxQueryLength,
			Msg: fmt.Sprintf("%d bytes (max %d)", len(query), MaxQueryLength),
			Err: ErrQueryTooLong,
		}
	}
	return nil
}

// ValidateTokens validates token count
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return &ParseError{
			Pos: tokens[MaxTokens].Pos,
			Msg: fmt.Sprintf("%d tokens (max %d)", len(tokens), MaxTokens),
			Err: ErrTooManyTokens,
		}
	}
	return nil
}

// ExpressionDepthCounter tracks predicate nesting depth
type ExpressionDepthCounter struct {
	depth    int
	maxDepth int
}

// NewExpressionDepthCounter creates a new depth counter
func NewExpressionDepthCounter() *ExpressionDepthCounter {
	return &ExpressionDepthCounter{depth: 0, maxDepth: MaxExpressionDepth}
}

// Enter increments depth and returns error if limit exceeded
func (c *ExpressionDepthCounter) Enter() error {
	c.depth++
	if c.depth > c.maxDepth {
		return fmt.Errorf("%w: %d (max %d)", ErrExpressionTooDeep, c.depth, c.maxDepth)
	}
	return nil
}

// Exit decrements depth
func (c *ExpressionDepthCounter) Exit() {
	c.depth--
}
