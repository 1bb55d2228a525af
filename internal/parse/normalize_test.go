package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePage(t *testing.T) {
	t.Run("finds postal header", func(t *testing.T) {
		text := "Katalogen 2024\n187 74  Täby\nSome other line"
		lines, header := NormalizePage(text)

		require.Len(t, lines, 3)
		require.NotNil(t, header)
		assert.Equal(t, "187 74", header.PostalCode)
		assert.Equal(t, "Täby", header.AreaName)
	})

	t.Run("first header wins", func(t *testing.T) {
		text := "111 22 Solna\n333 44 Nacka"
		_, header := NormalizePage(text)

		require.NotNil(t, header)
		assert.Equal(t, "111 22", header.PostalCode)
		assert.Equal(t, "Solna", header.AreaName)
	})

	t.Run("page without header", func(t *testing.T) {
		lines, header := NormalizePage("just text\nno postal code here")

		assert.Len(t, lines, 2)
		assert.Nil(t, header)
	})

	t.Run("empty page yields nothing", func(t *testing.T) {
		lines, header := NormalizePage("   \n\t\n")
		assert.Nil(t, lines)
		assert.Nil(t, header)
	})

	t.Run("strips carriage returns", func(t *testing.T) {
		lines, _ := NormalizePage("first\r\nsecond\r")
		require.Len(t, lines, 2)
		assert.Equal(t, "first", lines[0])
		assert.Equal(t, "second", lines[1])
	})

	t.Run("four digit year is not a postal code", func(t *testing.T) {
		_, header := NormalizePage("Katalogen 2024 Stockholm")
		assert.Nil(t, header)
	})
}
