package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/kikitori/internal/failure"
)

func allSupported() map[string]bool {
	return map[string]bool{"audio/webm": true, "audio/mp4": true, "audio/wav": true}
}

func TestStartStopProducesSingleArtifact(t *testing.T) {
	platform := &stubPlatform{
		supported: allSupported(),
		fragments: [][]byte{[]byte("abc"), {}, []byte("def")},
	}
	rec := New(platform)

	require.NoError(t, rec.Start(context.Background()))
	require.Equal(t, StateRecording, rec.State())
	require.Equal(t, "stub mic", rec.DeviceName())

	artifact, err := rec.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte("abcdef"), artifact.Data)
	require.Equal(t, "audio/webm", artifact.MIMEType)
	require.Equal(t, StateIdle, rec.State())
	require.Equal(t, int32(1), platform.releases.Load())

	again, err := rec.Stop(context.Background())
	require.ErrorIs(t, err, ErrNotRecording)
	require.Equal(t, Artifact{}, again)
	require.Equal(t, int32(1), platform.releases.Load())
	require.Equal(t, StateIdle, rec.State())
}

func TestFragmentsArriveDuringRecordingInOrder(t *testing.T) {
	platform := &stubPlatform{
		supported: allSupported(),
		fragments: [][]byte{[]byte("3")},
	}
	rec := New(platform)
	require.NoError(t, rec.Start(context.Background()))

	enc := platform.lastEncoder()
	enc.push([]byte("1"))
	enc.push([]byte("2"))

	artifact, err := rec.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte("123"), artifact.Data)
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	platform := &stubPlatform{supported: allSupported()}
	rec := New(platform)

	artifact, err := rec.Stop(context.Background())
	require.ErrorIs(t, err, ErrNotRecording)
	require.Equal(t, Artifact{}, artifact)
	require.Equal(t, StateIdle, rec.State())
	require.Equal(t, int32(0), platform.acquires.Load())
}

func TestStartWhileRecordingDoesNotAcquireAgain(t *testing.T) {
	platform := &stubPlatform{supported: allSupported()}
	rec := New(platform)

	require.NoError(t, rec.Start(context.Background()))
	err := rec.Start(context.Background())
	require.ErrorIs(t, err, ErrBusy)
	require.Equal(t, int32(1), platform.acquires.Load())
	require.Equal(t, StateRecording, rec.State())

	_, err = rec.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), platform.releases.Load())
}

func TestConcurrentStartsAcquireOnce(t *testing.T) {
	platform := &stubPlatform{supported: allSupported()}
	rec := New(platform)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- rec.Start(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	started := 0
	for err := range errs {
		if err == nil {
			started++
			continue
		}
		require.ErrorIs(t, err, ErrBusy)
	}
	require.Equal(t, 1, started)
	require.Equal(t, int32(1), platform.acquires.Load())
	require.NoError(t, rec.Close())
}

func TestNegotiatesSecondPreferenceWhenOnlyItIsSupported(t *testing.T) {
	platform := &stubPlatform{
		supported: map[string]bool{"audio/mp4": true},
		fragments: [][]byte{[]byte("mp4-bytes")},
	}
	rec := New(platform)

	require.NoError(t, rec.Start(context.Background()))
	require.Equal(t, "audio/mp4", rec.MIMEType())

	artifact, err := rec.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "audio/mp4", artifact.MIMEType)
}

func TestArtifactCarriesSubstitutedContainer(t *testing.T) {
	platform := &stubPlatform{
		supported:  allSupported(),
		substitute: "audio/ogg",
		fragments:  [][]byte{[]byte("x")},
	}
	rec := New(platform)

	require.NoError(t, rec.Start(context.Background()))
	artifact, err := rec.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "audio/ogg", artifact.MIMEType)
	require.Equal(t, "audio/webm", rec.MIMEType())
}

func TestFinalizeErrorReleasesDeviceAndAllowsRetry(t *testing.T) {
	platform := &stubPlatform{
		supported: allSupported(),
		finishErr: errors.New("encoder crashed"),
	}
	rec := New(platform)

	require.NoError(t, rec.Start(context.Background()))
	artifact, err := rec.Stop(context.Background())
	require.Error(t, err)
	require.True(t, failure.Is(err, failure.EncodingError))
	require.Contains(t, err.Error(), "encoder crashed")
	require.Equal(t, Artifact{}, artifact)
	require.Equal(t, StateIdle, rec.State())
	require.Equal(t, int32(1), platform.releases.Load())

	platform.finishErr = nil
	require.NoError(t, rec.Start(context.Background()))
	_, err = rec.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(2), platform.acquires.Load())
	require.Equal(t, int32(2), platform.releases.Load())
}

func TestDeviceUnavailableFailsAndNotifies(t *testing.T) {
	platform := &stubPlatform{supported: allSupported(), acquireErr: errPermissionDenied}
	notifier := &recordingNotifier{}
	rec := New(platform, WithNotifier(notifier))

	err := rec.Start(context.Background())
	require.Error(t, err)
	require.True(t, failure.Is(err, failure.DeviceUnavailable))
	require.ErrorIs(t, err, errPermissionDenied)
	require.Equal(t, "permission denied", err.Error())
	require.Equal(t, StateIdle, rec.State())
	require.Equal(t, []string{"device_unavailable: " + deviceNotice}, notifier.messages)
	require.Equal(t, int32(0), platform.releases.Load())

	platform.acquireErr = nil
	require.NoError(t, rec.Start(context.Background()))
	require.Equal(t, StateRecording, rec.State())
	require.NoError(t, rec.Close())
}

func TestEncoderStartFailureReleasesDevice(t *testing.T) {
	platform := &stubPlatform{supported: allSupported(), encodeErr: errors.New("no codec")}
	rec := New(platform)

	err := rec.Start(context.Background())
	require.True(t, failure.Is(err, failure.DeviceUnavailable))
	require.Contains(t, err.Error(), "no codec")
	require.Equal(t, int32(1), platform.releases.Load())
	require.Equal(t, StateIdle, rec.State())
}

func TestElapsedAdvancesWhileRecordingAndFreezesAfterStop(t *testing.T) {
	platform := &stubPlatform{supported: allSupported()}
	rec := New(platform, WithTickInterval(5*time.Millisecond))

	require.NoError(t, rec.Start(context.Background()))
	require.Eventually(t, func() bool { return rec.Elapsed() >= 2 }, time.Second, 2*time.Millisecond)

	_, err := rec.Stop(context.Background())
	require.NoError(t, err)

	frozen := rec.Elapsed()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, frozen, rec.Elapsed())
}

func TestCancelDiscardsAudioAndReleasesDevice(t *testing.T) {
	platform := &stubPlatform{supported: allSupported(), fragments: [][]byte{[]byte("secret")}}
	rec := New(platform)

	require.NoError(t, rec.Start(context.Background()))
	require.NoError(t, rec.Cancel())
	require.Equal(t, StateIdle, rec.State())
	require.Equal(t, int32(1), platform.releases.Load())

	require.ErrorIs(t, rec.Cancel(), ErrNotRecording)
	_, err := rec.Stop(context.Background())
	require.ErrorIs(t, err, ErrNotRecording)
}

func TestCloseReleasesActiveDeviceAndRejectsStart(t *testing.T) {
	platform := &stubPlatform{supported: allSupported()}
	rec := New(platform)

	require.NoError(t, rec.Start(context.Background()))
	require.NoError(t, rec.Close())
	require.Equal(t, int32(1), platform.releases.Load())
	require.ErrorIs(t, rec.Start(context.Background()), ErrClosed)
	require.NoError(t, rec.Close())
}

func TestStateObserverSeesLifecycle(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	platform := &stubPlatform{supported: allSupported()}
	rec := New(platform, WithStateObserver(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	}))

	require.NoError(t, rec.Start(context.Background()))
	_, err := rec.Stop(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []State{StateRequesting, StateRecording, StateStopping, StateCompleted, StateIdle}, states)
}

func TestStateObserverSeesFailureThenIdle(t *testing.T) {
	var states []State
	platform := &stubPlatform{supported: allSupported(), acquireErr: errPermissionDenied}
	rec := New(platform, WithStateObserver(func(s State) { states = append(states, s) }))

	require.Error(t, rec.Start(context.Background()))
	require.Equal(t, []State{StateRequesting, StateFailed, StateIdle}, states)
	require.Equal(t, StateIdle, rec.State())
}

func TestReleasedExactlyOncePerSessionAcrossSequences(t *testing.T) {
	platform := &stubPlatform{supported: allSupported(), fragments: [][]byte{[]byte("a")}}
	rec := New(platform)
	ctx := context.Background()

	artifacts := 0
	steps := []string{"start", "stop", "stop", "start", "start", "stop", "start", "cancel", "stop", "start", "stop"}
	for _, step := range steps {
		switch step {
		case "start":
			_ = rec.Start(ctx)
		case "stop":
			if _, err := rec.Stop(ctx); err == nil {
				artifacts++
			}
		case "cancel":
			_ = rec.Cancel()
		}
	}

	require.Equal(t, 3, artifacts)
	require.Equal(t, int32(4), platform.acquires.Load())
	require.Equal(t, platform.acquires.Load(), platform.releases.Load())
}
