package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesRender(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, HolidayFormTemplate, map[string]interface{}{
		"Token":     "tok<en>",
		"Dates":     []string{"2025-12-01", "2025-12-25"},
		"Today":     "2025-12-20",
		"ExpiresAt": time.Date(2025, 12, 20, 9, 10, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `value="2025-12-25" min="2025-12-20" required`)
	assert.NotContains(t, out, `value="2025-12-01"`)
	assert.Contains(t, out, "tok&lt;en&gt;")

	buf.Reset()
	require.NoError(t, tmpl.ExecuteTemplate(&buf, HolidayResultTemplate, map[string]interface{}{"Inserted": 2, "Dates": []string{"2025-12-25"}}))
	assert.Contains(t, buf.String(), "2 件")
}
