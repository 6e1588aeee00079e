package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAdminIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3}, ParseAdminIDs("1,2,3"))
	assert.Equal(t, []int64{42}, ParseAdminIDs(" 42 "))
	assert.Empty(t, ParseAdminIDs(""))
	// Мусорные элементы пропускаются
	assert.Equal(t, []int64{5}, ParseAdminIDs("abc,5"))
}
