package tools

import (
	"context"
	"fmt"
	"time"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// currentDate reports the current date with explicit year, month, and day so
// the model can anchor every other result in time.
func currentDate(_ context.Context, _ map[string]interface{}) (map[string]interface{}, error) {
	now := nowFunc()
	return map[string]interface{}{
		"result": fmt.Sprintf("Current date: %s (Year: %d, Month: %d, Day: %d)",
			now.Format("January 2, 2006"), now.Year(), int(now.Month()), now.Day()),
	}, nil
}
