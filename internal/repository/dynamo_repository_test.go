package repository

import (
	"context"
	"testing"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDynamo(t *testing.T) (*DynamoStore, func()) {
	if testing.Short() {
		t.Skip("skipping DynamoDB container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.5.2",
			ExposedPorts: []string{"8000/tcp"},
			WaitingFor:   wait.ForListeningPort("8000/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)

	endpoint, err := container.PortEndpoint(ctx, "8000/tcp", "http")
	require.NoError(t, err)

	client, err := NewDynamoClient(ctx, "us-east-1", endpoint,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")))
	require.NoError(t, err)

	store := NewDynamoStore(client)
	require.NoError(t, store.EnsureTables(ctx, MenuItems, Orders))

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return store, cleanup
}

func TestDynamoStore_Contract(t *testing.T) {
	store, cleanup := setupTestDynamo(t)
	defer cleanup()

	runBackendContract(t, store)
}

func TestDynamoStore_EnsureTablesIsRepeatable(t *testing.T) {
	store, cleanup := setupTestDynamo(t)
	defer cleanup()

	assert.NoError(t, store.EnsureTables(context.Background(), MenuItems, Orders))
}

func TestDynamoStore_DuplicateKey(t *testing.T) {
	store, cleanup := setupTestDynamo(t)
	defer cleanup()

	ctx := context.Background()
	doc := MenuItemCodec{}.Encode(sampleMenuItem())
	doc[MenuItems.Key] = "fixed-key"

	require.NoError(t, store.Put(ctx, MenuItems, doc))
	assert.ErrorIs(t, store.Put(ctx, MenuItems, doc), ErrDuplicateKey)
}
