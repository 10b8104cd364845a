//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sync/atomic"
	"testing"
)

// sharedMongo is the replica set every integration test in a binary connects to.
var sharedMongo atomic.Pointer[MongoDBContainer]

// SetupTestMainWithMongoDB starts one MongoDB replica set, runs the package's
// tests against it and terminates it afterwards.
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
//	}
func SetupTestMainWithMongoDB(ctx context.Context, m *testing.M) int {
	c, err := SetupMongoDB(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start shared MongoDB: %v\n", err)
		return 1
	}
	sharedMongo.Store(c)
	defer func() {
		sharedMongo.Store(nil)
		if err := c.Cleanup(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "terminate shared MongoDB: %v\n", err)
		}
	}()

	return m.Run()
}

// GetSharedContainerURI returns the shared replica set's connection string.
// It panics outside SetupTestMainWithMongoDB.
func GetSharedContainerURI() string {
	c := sharedMongo.Load()
	if c == nil {
		panic("testutil: shared MongoDB not started; call SetupTestMainWithMongoDB from TestMain")
	}
	return c.URI
}

var (
	unsafeDBChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	dbSeq         atomic.Int64
)

// SanitizeDBName derives a database name from a test name, unique within the
// test binary.
func SanitizeDBName(testName string) string {
	name := unsafeDBChars.ReplaceAllString(testName, "_")
	if len(name) > 48 {
		name = name[:48]
	}
	return fmt.Sprintf("%s_%d", name, dbSeq.Add(1))
}
