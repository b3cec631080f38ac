package testkit

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/vendordesk/pkg/kvstore"
)

// MockStore is a testify-backed kvstore.Store for failure injection:
//
//	kv := new(testkit.MockStore)
//	kv.On("Set", mock.Anything, "auth_token", "abc").Return(errors.New("disk full"))
type MockStore struct {
	mock.Mock
}

var _ kvstore.Store = (*MockStore)(nil)

func (m *MockStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
