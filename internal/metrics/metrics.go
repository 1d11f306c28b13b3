package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Photo outcomes for a create call.
const (
	PhotoStored   = "stored"
	PhotoSentinel = "sentinel"
	PhotoRejected = "rejected"
)

// Storage stages that can fail.
const (
	StageWrite   = "write"
	StageCleanup = "cleanup"
)

// Metrics provides observability for the kennel workflows.
type Metrics struct {
	AnimalsCreated       prometheus.Counter
	AnimalsDeleted       prometheus.Counter
	PhotoOutcomes        *prometheus.CounterVec
	StorageFailures      *prometheus.CounterVec
	Registrations        *prometheus.CounterVec
	CreateAnimalDuration prometheus.Histogram
}

// New registers every kennel metric with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AnimalsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "kennel_animals_created_total",
			Help: "Total number of animals created",
		}),
		AnimalsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "kennel_animals_deleted_total",
			Help: "Total number of animals deleted",
		}),
		PhotoOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kennel_photo_outcomes_total",
			Help: "Photo attachment outcomes on animal create",
		}, []string{"outcome"}),
		StorageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kennel_photo_storage_failures_total",
			Help: "Photo store failures by stage",
		}, []string{"stage"}),
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kennel_registrations_total",
			Help: "Breeder registrations by terminal state",
		}, []string{"state"}),
		CreateAnimalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kennel_create_animal_duration_seconds",
			Help:    "Duration of animal create operations including photo upload",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObservePhoto records how a create call attached its photo.
func (m *Metrics) ObservePhoto(outcome string) {
	m.PhotoOutcomes.WithLabelValues(outcome).Inc()
}

// IncrementStorageFailure records a failed photo store call.
func (m *Metrics) IncrementStorageFailure(stage string) {
	m.StorageFailures.WithLabelValues(stage).Inc()
}

// ObserveRegistration records the state a registration ended in.
func (m *Metrics) ObserveRegistration(state string) {
	m.Registrations.WithLabelValues(state).Inc()
}

// ObserveCreateAnimal records the duration of a create call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreateAnimal(start time.Time) {
	m.CreateAnimalDuration.Observe(time.Since(start).Seconds())
}
