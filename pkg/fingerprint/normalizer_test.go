package fingerprint_test

import (
	"testing"
	"time"

	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/NeuralTrust/AuthShield/pkg/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chromeEvent() event.LoginEvent {
	return event.LoginEvent{
		UserID:           "user-1",
		IPAddress:        "192.168.1.1",
		UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		ScreenResolution: "1920x1080",
		Timezone:         "UTC+0",
		LoginTimestamp:   time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	e := chromeEvent()
	e.WebGLHash = "webgl-abc"
	e.CanvasHash = "canvas-def"
	e.TypingLatencies = []float64{120, 140, 130, 150}

	first := fingerprint.Normalize(e)
	second := fingerprint.Normalize(e)

	assert.Equal(t, first.BehaviorHash, second.BehaviorHash)
	assert.Equal(t, first.FeatureVector, second.FeatureVector)
	assert.Equal(t, first.IPEntropy, second.IPEntropy)
	assert.Equal(t, first.DeviceEntropy, second.DeviceEntropy)
	assert.Equal(t, first.EntropyScore, second.EntropyScore)
}

func TestNormalize_VectorLengthAndRange(t *testing.T) {
	fp := fingerprint.Normalize(chromeEvent())

	require.Len(t, fp.FeatureVector, fingerprint.VectorLength)
	for i, v := range fp.FeatureVector {
		if i == 11 { // aspect ratio may exceed 1
			assert.GreaterOrEqual(t, v, 0.0)
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0, "component %d", i)
		assert.LessOrEqual(t, v, 1.0, "component %d", i)
	}
}

func TestNormalize_UAFlags(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      []float64 // chrome, firefox, safari, mobile, bot
	}{
		{
			name:      "chrome desktop sets chrome and safari",
			userAgent: "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			want:      []float64{1, 0, 1, 0, 0},
		},
		{
			name:      "firefox desktop",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want:      []float64{0, 1, 0, 0, 0},
		},
		{
			name:      "android chrome is mobile",
			userAgent: "Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36",
			want:      []float64{1, 0, 1, 1, 0},
		},
		{
			name:      "crawler",
			userAgent: "Googlebot/2.1 (+http://www.google.com/bot.html)",
			want:      []float64{0, 0, 0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := chromeEvent()
			e.UserAgent = tt.userAgent
			fp := fingerprint.Normalize(e)
			assert.Equal(t, tt.want, []float64(fp.FeatureVector[4:9]))
		})
	}
}

func TestNormalize_MalformedInputsFallBack(t *testing.T) {
	e := chromeEvent()
	e.IPAddress = "not-an-ip"
	e.ScreenResolution = "huge"
	e.Timezone = "Mars/Olympus"

	fp := fingerprint.Normalize(e)

	assert.Equal(t, []float64{0, 0, 0, 0}, []float64(fp.FeatureVector[0:4]))
	assert.Equal(t, []float64{0.5, 0.5, 1.0}, []float64(fp.FeatureVector[9:12]))
	assert.Equal(t, 0.5, fp.FeatureVector[12])
	assert.Equal(t, 0.0, fp.IPEntropy)
}

func TestNormalize_TypingLatency(t *testing.T) {
	t.Run("empty array is all zeros", func(t *testing.T) {
		fp := fingerprint.Normalize(chromeEvent())
		assert.Equal(t, []float64{0, 0, 0}, []float64(fp.FeatureVector[13:16]))
	})

	t.Run("single sample has zero range", func(t *testing.T) {
		e := chromeEvent()
		e.TypingLatencies = []float64{250}
		fp := fingerprint.Normalize(e)
		assert.Equal(t, 0.5, fp.FeatureVector[13]) // 250/500
		assert.Equal(t, 0.0, fp.FeatureVector[14])
		assert.Equal(t, 0.0, fp.FeatureVector[15])
	})

	t.Run("robotic speed clamps to 1", func(t *testing.T) {
		e := chromeEvent()
		e.TypingLatencies = []float64{5000, 1, 9000, 2}
		fp := fingerprint.Normalize(e)
		for _, v := range fp.FeatureVector[13:16] {
			assert.LessOrEqual(t, v, 1.0)
			assert.GreaterOrEqual(t, v, 0.0)
		}
	})
}

func TestBehaviorHash_CollisionByDesign(t *testing.T) {
	a := chromeEvent()
	a.WebGLHash = "hash-a"
	a.CanvasHash = "canvas-a"
	a.TypingLatencies = []float64{100, 110}

	b := chromeEvent()
	b.WebGLHash = "hash-b"
	b.CanvasHash = "canvas-b"
	b.TypingLatencies = []float64{300, 400, 500}

	// Same coarse environment, different device hashes and typing: collide.
	assert.Equal(t, fingerprint.Normalize(a).BehaviorHash, fingerprint.Normalize(b).BehaviorHash)

	c := chromeEvent()
	c.ScreenResolution = "1366x768"
	assert.NotEqual(t, fingerprint.Normalize(a).BehaviorHash, fingerprint.Normalize(c).BehaviorHash)

	d := chromeEvent()
	d.IPAddress = "10.0.0.1"
	assert.NotEqual(t, fingerprint.Normalize(a).BehaviorHash, fingerprint.Normalize(d).BehaviorHash)
}

func TestIPEntropy_Extremes(t *testing.T) {
	low := chromeEvent()
	low.IPAddress = "0.0.0.0"
	assert.Equal(t, 0.0, fingerprint.Normalize(low).IPEntropy)

	// 255.255.255.255 also carries zero self-information (p = 1 per octet);
	// mid-range octets carry the most.
	full := chromeEvent()
	full.IPAddress = "255.255.255.255"
	assert.Equal(t, 0.0, fingerprint.Normalize(full).IPEntropy)

	mid := chromeEvent()
	mid.IPAddress = "127.127.127.127"
	assert.Greater(t, fingerprint.Normalize(mid).IPEntropy, 0.0)
}

func TestDeviceEntropy(t *testing.T) {
	t.Run("no device hashes is zero", func(t *testing.T) {
		fp := fingerprint.Normalize(chromeEvent())
		assert.Equal(t, 0.0, fp.DeviceEntropy)
	})

	t.Run("distinct characters scale by 32", func(t *testing.T) {
		e := chromeEvent()
		e.WebGLHash = "abcd"
		e.CanvasHash = "efgh"
		fp := fingerprint.Normalize(e)
		assert.Equal(t, 0.25, fp.DeviceEntropy) // 8 unique chars / 32
	})
}

func TestIPPrefix(t *testing.T) {
	assert.Equal(t, "192.168.1", fingerprint.IPPrefix("192.168.1.77"))
	assert.Equal(t, "10.0.0", fingerprint.IPPrefix("10.0.0.1"))
}
