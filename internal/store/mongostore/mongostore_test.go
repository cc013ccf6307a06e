package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Domenick1991/skyfare/config"
)

func TestNew_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := New(ctx, config.MongoConfig{
		URI:      "mongodb://127.0.0.1:1",
		Database: "skyfare",
	})

	assert.Error(t, err)
	assert.Nil(t, s)
}
