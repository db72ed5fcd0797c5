package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RIOT_API_KEY", "RGAPI-test")
	t.Setenv("TARGET_GAME_NAME", "Hide on bush")
	t.Setenv("TARGET_TAG_LINE", "KR1")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDev, cfg.AppEnv)
	require.Equal(t, "europe", cfg.RiotRouter)
	require.Equal(t, 30*time.Second, cfg.RiotTimeout)
	require.Equal(t, 0, cfg.RiotMaxAttempts, "retries are unbounded by default")
	require.Equal(t, 2*time.Second, cfg.RiotThrottleWait)
	require.Equal(t, 2*time.Second, cfg.RiotServerErrorWait)
	require.Equal(t, 30, cfg.Target.Count)
	require.Empty(t, cfg.Queues)
	require.Empty(t, cfg.MatchType)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "")
	t.Setenv("TARGET_GAME_NAME", "Hide on bush")
	t.Setenv("TARGET_TAG_LINE", "KR1")

	_, err := Load()
	require.ErrorContains(t, err, "RIOT_API_KEY")
}

func TestLoad_InvalidRouter(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RIOT_ROUTER", "euw1")

	_, err := Load()
	require.ErrorContains(t, err, "RIOT_ROUTER")
}

func TestLoad_ParsesQueues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RIOT_QUEUES", " 420, 440 ,450,700 ")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []int{420, 440, 450, 700}, cfg.Queues)
}

func TestLoad_RejectsBadQueue(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RIOT_QUEUES", "420,ranked")

	_, err := Load()
	require.ErrorContains(t, err, "RIOT_QUEUES")
}

func TestLoad_RejectsMissingTarget(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "RGAPI-test")
	t.Setenv("TARGET_GAME_NAME", "")
	t.Setenv("TARGET_TAG_LINE", "KR1")

	_, err := Load()
	require.ErrorContains(t, err, "invalid target")
}

func TestLoad_RejectsOutOfRangeCount(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TARGET_COUNT", "150")

	_, err := Load()
	require.ErrorContains(t, err, "invalid target")
}

func TestLoad_RetryKnobs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RIOT_MAX_ATTEMPTS", "5")
	t.Setenv("RIOT_MAX_ELAPSED", "90s")
	t.Setenv("RIOT_THROTTLE_WAIT", "500ms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.RiotMaxAttempts)
	require.Equal(t, 90*time.Second, cfg.RiotMaxElapsed)
	require.Equal(t, 500*time.Millisecond, cfg.RiotThrottleWait)
}
