package sessions

import (
	"os"
	"testing"

	"go-chi-calculator/internal/history"
)

func TestMain(m *testing.M) {
	if err := InitMetrics(); err != nil {
		panic(err)
	}
	if err := history.InitMetrics(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
