package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/avct/uasurfer"
)

// VectorLength is the fixed feature-vector size:
// 4 IP octets + 5 UA flags + 3 screen + 1 timezone + 3 typing.
const VectorLength = 16

const (
	typingMeanScaleMs  = 500.0
	typingStdScaleMs   = 200.0
	typingRangeScaleMs = 1000.0

	maxScreenWidth  = 3840.0
	maxScreenHeight = 2160.0

	deviceEntropyScale = 32.0
)

type FeatureVector []float64

// Fingerprint is the normalized, hashed representation of a login event's
// environment. Recomputed per event, never persisted standalone.
type Fingerprint struct {
	UserID        string        `json:"user_id"`
	BehaviorHash  string        `json:"behavior_hash"`
	EntropyScore  float64       `json:"entropy_score"`
	FeatureVector FeatureVector `json:"feature_vector"`
	IPEntropy     float64       `json:"ip_entropy"`
	DeviceEntropy float64       `json:"device_entropy"`
}

// Normalize converts a raw login event into its fingerprint. It is pure and
// total: malformed fields fall back to neutral defaults, never errors.
func Normalize(e event.LoginEvent) Fingerprint {
	ipVec := normalizeIP(e.IPAddress)
	uaVec := normalizeUserAgent(e.UserAgent)
	screenVec := normalizeScreen(e.ScreenResolution)
	tz := normalizeTimezone(e.Timezone)
	typingVec := normalizeTypingLatency(e.TypingLatencies)

	vector := make(FeatureVector, 0, VectorLength)
	vector = append(vector, ipVec...)
	vector = append(vector, uaVec...)
	vector = append(vector, screenVec...)
	vector = append(vector, tz)
	vector = append(vector, typingVec...)

	ipEnt := calculateIPEntropy(e.IPAddress)
	devEnt := calculateDeviceEntropy(e.WebGLHash, e.CanvasHash)

	return Fingerprint{
		UserID:        e.UserID,
		BehaviorHash:  behaviorHash(ipVec, uaVec, screenVec, tz),
		EntropyScore:  round4(0.4*ipEnt + 0.6*devEnt),
		FeatureVector: vector,
		IPEntropy:     round4(ipEnt),
		DeviceEntropy: round4(devEnt),
	}
}

// IPPrefix returns the first three octets of a dotted-quad address, the
// grouping key for LOGIN_FROM edges.
func IPPrefix(ip string) string {
	octets := strings.Split(ip, ".")
	if len(octets) < 3 {
		return ip
	}
	return strings.Join(octets[:3], ".")
}

func normalizeIP(ip string) []float64 {
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return []float64{0, 0, 0, 0}
	}
	vec := make([]float64, 4)
	for i, o := range octets {
		v, err := strconv.Atoi(o)
		if err != nil {
			return []float64{0, 0, 0, 0}
		}
		vec[i] = float64(v) / 255.0
	}
	return vec
}

// normalizeUserAgent produces the five category flags: chrome, firefox,
// safari, mobile, bot. Substring checks define the baseline categories so
// that e.g. a Chrome UA also sets the safari flag (Chrome UAs carry the
// "Safari" token); uasurfer widens the mobile and bot flags to devices and
// crawlers the raw string checks miss.
func normalizeUserAgent(userAgent string) []float64 {
	flags := make([]float64, 5)
	lower := strings.ToLower(userAgent)
	parsed := uasurfer.Parse(userAgent)

	if strings.Contains(lower, "chrome") {
		flags[0] = 1.0
	}
	if strings.Contains(lower, "firefox") {
		flags[1] = 1.0
	}
	if strings.Contains(lower, "safari") {
		flags[2] = 1.0
	}
	if strings.Contains(lower, "mobile") || strings.Contains(lower, "android") ||
		parsed.DeviceType == uasurfer.DevicePhone || parsed.DeviceType == uasurfer.DeviceTablet {
		flags[3] = 1.0
	}
	if strings.Contains(lower, "bot") || strings.Contains(lower, "crawler") || parsed.IsBot() {
		flags[4] = 1.0
	}
	return flags
}

func normalizeScreen(resolution string) []float64 {
	parts := strings.SplitN(strings.ToLower(resolution), "x", 2)
	if len(parts) != 2 {
		return []float64{0.5, 0.5, 1.0}
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return []float64{0.5, 0.5, 1.0}
	}
	aspect := float64(w) / float64(h)
	return []float64{
		math.Min(float64(w)/maxScreenWidth, 1.0),
		math.Min(float64(h)/maxScreenHeight, 1.0),
		aspect,
	}
}

func normalizeTimezone(timezone string) float64 {
	s := strings.TrimSpace(timezone)
	s = strings.TrimPrefix(s, "UTC")
	s = strings.TrimPrefix(s, "+")
	offset, err := strconv.Atoi(s)
	if err != nil {
		return 0.5
	}
	return clamp01(float64(offset+12) / 24.0)
}

func normalizeTypingLatency(latencies []float64) []float64 {
	if len(latencies) == 0 {
		return []float64{0, 0, 0}
	}

	var sum float64
	minV, maxV := latencies[0], latencies[0]
	for _, v := range latencies {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	mean := sum / float64(len(latencies))

	var variance float64
	for _, v := range latencies {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(latencies))
	std := math.Sqrt(variance)

	rangeComponent := 0.0
	if len(latencies) > 1 {
		rangeComponent = (maxV - minV) / typingRangeScaleMs
	}

	return []float64{
		clamp01(mean / typingMeanScaleMs),
		clamp01(std / typingStdScaleMs),
		clamp01(rangeComponent),
	}
}

// calculateIPEntropy sums per-octet Shannon self-information. A repeating
// low-value address naturally scores low, a high-value one high.
func calculateIPEntropy(ip string) float64 {
	var entropy float64
	for _, o := range strings.Split(ip, ".") {
		v, err := strconv.Atoi(o)
		if err != nil || v <= 0 {
			continue
		}
		p := float64(v) / 255.0
		entropy -= p * math.Log2(p)
	}
	return clamp01(entropy / 8.0)
}

// calculateDeviceEntropy counts distinct characters across both device
// hashes. A diversity measure, not cryptographic entropy.
func calculateDeviceEntropy(webglHash, canvasHash string) float64 {
	combined := webglHash + canvasHash
	if combined == "" {
		return 0
	}
	seen := make(map[rune]struct{}, len(combined))
	for _, r := range combined {
		seen[r] = struct{}{}
	}
	return math.Min(float64(len(seen))/deviceEntropyScale, 1.0)
}

// behaviorHash covers only the coarse environment sub-vectors. Device hashes
// and typing cadence are excluded so accounts sharing an environment collide.
func behaviorHash(ipVec, uaVec, screenVec []float64, tz float64) string {
	var b strings.Builder
	writeVec := func(vec []float64) {
		b.WriteByte('[')
		for i, v := range vec {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatFloat(v, 'f', 6, 64))
		}
		b.WriteByte(']')
	}
	writeVec(ipVec)
	writeVec(uaVec)
	writeVec(screenVec)
	b.WriteString(fmt.Sprintf("%.6f", tz))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
