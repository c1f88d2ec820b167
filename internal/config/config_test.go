package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) Getenv {
	return func(key string) string {
		return values[key]
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backend-infra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	s, err := load("", Overrides{}, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "dev", s.Prefix)
	assert.Equal(t, "us-west-2", s.Region)
	assert.Empty(t, s.Account)
	assert.Equal(t, []StackKind{StackBackend, StackEc2Test}, s.Stacks)
	assert.Equal(t, map[string]string{
		"Environment": "dev",
		"Project":     "backend-infra-cdk",
		"ManagedBy":   "CDK",
	}, s.Tags)
}

func TestLoad_EnvFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantAccount string
		wantRegion  string
	}{
		{
			name:        "cdk defaults win",
			env:         map[string]string{EnvCdkDefaultAccount: "111111111111", EnvAwsAccountId: "222222222222", EnvCdkDefaultRegion: "eu-west-1", EnvAwsRegion: "ap-northeast-1"},
			wantAccount: "111111111111",
			wantRegion:  "eu-west-1",
		},
		{
			name:        "aws variables as fallback",
			env:         map[string]string{EnvAwsAccountId: "222222222222", EnvAwsRegion: "ap-northeast-1"},
			wantAccount: "222222222222",
			wantRegion:  "ap-northeast-1",
		},
		{
			name:        "region default",
			env:         map[string]string{},
			wantAccount: "",
			wantRegion:  "us-west-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := load("", Overrides{}, envMap(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccount, s.Account)
			assert.Equal(t, tt.wantRegion, s.Region)
		})
	}
}

func TestLoad_InvalidPrefixRejected(t *testing.T) {
	_, err := load("", Overrides{}, envMap(map[string]string{EnvPrefix: "bad_prefix!"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPrefix))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
prefix: fromfile
region: eu-central-1
stacks: [backend, iam-demo]
tags:
  Owner: platform
  Project: overridden
`)

	t.Run("file only", func(t *testing.T) {
		s, err := load(path, Overrides{}, envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, "fromfile", s.Prefix)
		assert.Equal(t, "eu-central-1", s.Region)
		assert.Equal(t, []StackKind{StackBackend, StackIamDemo}, s.Stacks)
		assert.Equal(t, "platform", s.Tags["Owner"])
		assert.Equal(t, "overridden", s.Tags["Project"])
		assert.Equal(t, "fromfile", s.Tags["Environment"])
	})

	t.Run("env over file", func(t *testing.T) {
		s, err := load(path, Overrides{}, envMap(map[string]string{
			EnvPrefix: "fromenv",
			EnvStacks: "s3-bucket, backend",
		}))
		require.NoError(t, err)
		assert.Equal(t, "fromenv", s.Prefix)
		assert.Equal(t, []StackKind{StackS3Bucket, StackBackend}, s.Stacks)
	})

	t.Run("flags over env", func(t *testing.T) {
		s, err := load(path, Overrides{Prefix: "fromflag", Region: "us-east-1", Stacks: []string{"async-worker"}},
			envMap(map[string]string{EnvPrefix: "fromenv", EnvCdkDefaultRegion: "eu-west-1"}))
		require.NoError(t, err)
		assert.Equal(t, "fromflag", s.Prefix)
		assert.Equal(t, "us-east-1", s.Region)
		assert.Equal(t, []StackKind{StackAsyncWorker}, s.Stacks)
	})
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), Overrides{}, envMap(nil))
	assert.Error(t, err)
}

func TestLoad_BrokenYaml(t *testing.T) {
	path := writeConfig(t, "prefix: [unclosed")
	_, err := load(path, Overrides{}, envMap(nil))
	assert.Error(t, err)
}

func TestParseStackKinds(t *testing.T) {
	kinds, err := ParseStackKinds([]string{"backend", "ec2-test", "backend"})
	require.NoError(t, err)
	assert.Equal(t, []StackKind{StackBackend, StackEc2Test}, kinds)

	_, err = ParseStackKinds([]string{"frontend"})
	assert.Error(t, err)
}

func TestParseStackList(t *testing.T) {
	kinds, err := ParseStackList(" backend, ,iam-demo,backend ")
	require.NoError(t, err)
	assert.Equal(t, []StackKind{StackBackend, StackIamDemo}, kinds)

	_, err = ParseStackList("backend,frontend")
	assert.Error(t, err)
}

func TestSettings_Has(t *testing.T) {
	s := &Settings{Stacks: []StackKind{StackBackend}}
	assert.True(t, s.Has(StackBackend))
	assert.False(t, s.Has(StackIamDemo))
	assert.False(t, (&Settings{}).Has(StackBackend))
}
