package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTheme(t *testing.T) {
	for _, name := range Names() {
		assert.Contains(t, byName, name)
	}
	assert.Equal(t, Ledger.Title.GetForeground(), GetTheme("ledger").Title.GetForeground())
	assert.Equal(t, Default.Title.GetForeground(), GetTheme("solarized").Title.GetForeground())
}

func TestCategoryIcon(t *testing.T) {
	assert.Equal(t, "🏠", CategoryIcon("Rent"))
	assert.Equal(t, "📦", CategoryIcon("Other"))
}
