package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	values map[string]string
	calls  int
}

func (f *fakeFetcher) GetSecret(_ context.Context, name string, _ string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, errors.New("SecretNotFound")
	}
	var resp azsecrets.GetSecretResponse
	resp.Value = &v
	return resp, nil
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceVault, ResolveSource(SourceVault, "development"))
}

func TestProvider_EnvironmentSource(t *testing.T) {
	env := map[string]string{"JWT_SECRET": "s3cret"}
	p, err := NewProvider(&ProviderConfig{Source: SourceEnvironment}, zap.NewNop())
	require.NoError(t, err)
	p.lookupEnv = func(k string) string { return env[k] }

	ctx := context.Background()
	v, err := p.GetSecret(ctx, "JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = p.GetSecret(ctx, "MISSING")
	assert.Error(t, err)
	assert.Equal(t, "fallback", p.GetSecretWithDefault(ctx, "MISSING", "fallback"))
	assert.False(t, p.IsVaultEnabled())
}

func TestProvider_EnvOverridesVault(t *testing.T) {
	fetcher := &fakeFetcher{values: map[string]string{"jwt-secret": "from-vault"}}
	env := map[string]string{}
	p := &Provider{
		source:      SourceVault,
		logger:      zap.NewNop(),
		vaultClient: newVaultClient(fetcher, &VaultConfig{VaultName: "kv"}, zap.NewNop()),
		lookupEnv:   func(k string) string { return env[k] },
	}

	v, err := p.GetSecretOrEnv(context.Background(), "jwt-secret", "JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)

	env["JWT_SECRET"] = "from-env"
	v, err = p.GetSecretOrEnv(context.Background(), "jwt-secret", "JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
}

func TestVaultClient_Cache(t *testing.T) {
	fetcher := &fakeFetcher{values: map[string]string{"db": "pw"}}
	vc := newVaultClient(fetcher, &VaultConfig{VaultName: "kv", CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	vc.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := vc.GetSecret(ctx, "db")
		require.NoError(t, err)
		assert.Equal(t, "pw", v)
	}
	assert.Equal(t, 1, fetcher.calls)

	now = now.Add(2 * time.Minute)
	_, err := vc.GetSecret(ctx, "db")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)

	vc.ClearCache()
	_, err = vc.GetSecret(ctx, "db")
	require.NoError(t, err)
	assert.Equal(t, 3, fetcher.calls)

	_, err = vc.GetSecret(ctx, "missing")
	assert.Error(t, err)
}
