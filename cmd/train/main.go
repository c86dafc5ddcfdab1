package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/NeuralTrust/AuthShield/pkg/anomaly"
	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/NeuralTrust/AuthShield/pkg/fingerprint"
	infraLogger "github.com/NeuralTrust/AuthShield/pkg/infra/logger"
	"github.com/joho/godotenv"
)

// Trains the anomaly baseline from synthetic benign traffic and writes the
// model artifact the scorer loads at startup. Run before first deployment
// and whenever the baseline should be refreshed.
func main() {
	modelPath := flag.String("model", "isolation_forest.json", "output path for the model artifact")
	samples := flag.Int("samples", 2000, "number of benign events to synthesize")
	seed := flag.Int64("seed", 42, "rng seed for reproducible baselines")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	logger := infraLogger.NewLogger()
	scorer := anomaly.NewScorer(*modelPath, logger)

	rng := rand.New(rand.NewSource(*seed))
	vectors := make([][]float64, 0, *samples)
	for i := 0; i < *samples; i++ {
		fp := fingerprint.Normalize(benignEvent(rng, i))
		vectors = append(vectors, fp.FeatureVector)
	}

	if err := scorer.Train(vectors); err != nil {
		logger.WithError(err).Error("training failed")
		os.Exit(1)
	}
	logger.WithField("path", *modelPath).Info("anomaly baseline trained")
}

var benignAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Firefox/121.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari/604.1",
	"Mozilla/5.0 (X11; Linux x86_64) Chrome/119.0.0.0 Safari/537.36",
}

var benignScreens = []string{"1920x1080", "2560x1440", "1366x768", "390x844"}

var benignTimezones = []string{"UTC+0", "UTC-5", "UTC+1", "UTC+8", "UTC-8"}

// benignEvent synthesizes a plausible human login: residential-looking IP,
// common device profile, typing cadence around 100-200ms with jitter.
func benignEvent(rng *rand.Rand, i int) event.LoginEvent {
	latencies := make([]float64, 8)
	base := 100 + rng.Float64()*100
	for j := range latencies {
		latencies[j] = base + rng.NormFloat64()*25
		if latencies[j] < 20 {
			latencies[j] = 20
		}
	}

	return event.LoginEvent{
		UserID:           fmt.Sprintf("baseline-%d", i),
		IPAddress:        fmt.Sprintf("%d.%d.%d.%d", 60+rng.Intn(140), rng.Intn(256), rng.Intn(256), 1+rng.Intn(254)),
		UserAgent:        benignAgents[rng.Intn(len(benignAgents))],
		ScreenResolution: benignScreens[rng.Intn(len(benignScreens))],
		Timezone:         benignTimezones[rng.Intn(len(benignTimezones))],
		TypingLatencies:  latencies,
	}
}
