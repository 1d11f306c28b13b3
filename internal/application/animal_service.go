package application

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/animal"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/gateway"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/events"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/photostore"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

// AnimalRequest holds the submitted animal form. Dates use YYYY-MM-DD and
// the price accepts a dot or comma before up to two decimals.
type AnimalRequest struct {
	Name           string `json:"name" form:"name"`
	BirthDate      string `json:"birth_date" form:"birth_date"`
	PurchaseDate   string `json:"purchase_date" form:"purchase_date"`
	PurchasePrice  string `json:"purchase_price" form:"purchase_price"`
	Sex            string `json:"sex" form:"sex"`
	RegistryNumber string `json:"registry_number" form:"registry_number"`
	BreederID      uint   `json:"breeder_id" form:"breeder_id"`
	BreedID        uint   `json:"breed_id" form:"breed_id"`
	// Version is the value an editor read; zero skips the pre-check.
	Version int64 `json:"version" form:"version"`
}

// PhotoUpload is an uploaded file as received from the transport.
type PhotoUpload struct {
	FileName string
	Content  io.Reader
}

// AnimalResult is a successful write, possibly with non-fatal warnings.
type AnimalResult struct {
	Animal   *AnimalDTO `json:"animal"`
	Warnings []string   `json:"warnings,omitempty"`
}

// DeleteResult reports a committed delete and any files left behind.
type DeleteResult struct {
	AnimalID uint     `json:"animal_id"`
	Photos   int      `json:"photos"`
	Warnings []string `json:"warnings,omitempty"`
}

// SweepReport summarizes a reconciliation pass over stored photos.
type SweepReport struct {
	Checked  int `json:"checked"`
	Repaired int `json:"repaired"`
}

// AnimalServiceOptions tunes the photo policy.
type AnimalServiceOptions struct {
	// RejectUnsupportedPhotos reports a field error for uploads that are not
	// JPEG or PNG. When false they are dropped and the sentinel is attached.
	RejectUnsupportedPhotos bool
}

// AnimalService validates and executes animal writes together with their photos.
type AnimalService struct {
	gw        gateway.Gateway
	photos    photostore.Store
	publisher EventPublisher
	metrics   *metrics.Metrics
	opts      AnimalServiceOptions
	logger    *zap.Logger
}

// NewAnimalService creates a new AnimalService.
func NewAnimalService(
	gw gateway.Gateway,
	photos photostore.Store,
	publisher EventPublisher,
	m *metrics.Metrics,
	opts AnimalServiceOptions,
	logger *zap.Logger,
) *AnimalService {
	return &AnimalService{
		gw:        gw,
		photos:    photos,
		publisher: publisher,
		metrics:   m,
		opts:      opts,
		logger:    logger,
	}
}

type stagedPhoto struct {
	fileName string
	body     io.Reader
}

// Create validates the request, stores any accepted photo, then commits the
// animal and its photo row in one transaction. The bytes are durable before
// any row references them; a staged file is removed again if the commit fails.
func (s *AnimalService) Create(ctx context.Context, req AnimalRequest, upload *PhotoUpload) (*AnimalResult, error) {
	start := time.Now()
	defer s.metrics.ObserveCreateAnimal(start)

	stores := s.gw.Stores()
	fields, causes, err := checkReferences(ctx, stores, req.BreedID, req.BreederID)
	if err != nil {
		return nil, err
	}
	attrs, attrFields := parseAnimalRequest(req)
	fields = append(fields, attrFields...)

	now := time.Now().UTC()
	photo, staged, outcome, err := s.preparePhoto(upload, now)
	if err != nil {
		return nil, err
	}
	if staged == nil && upload != nil && upload.Content != nil && s.opts.RejectUnsupportedPhotos {
		fields = append(fields, domain.FieldError{Field: "photo", Message: "must be a JPEG or PNG image"})
	}
	if len(fields) > 0 {
		return nil, rejectAnimal(fields, causes)
	}

	a, err := animal.NewAnimal(attrs)
	if err != nil {
		return nil, err
	}
	a.AttachPhoto(photo)

	if staged != nil {
		if err := s.photos.Save(ctx, staged.fileName, staged.body); err != nil {
			s.metrics.IncrementStorageFailure(metrics.StageWrite)
			s.logger.Error("failed to store photo, animal not created",
				zap.String("file_name", staged.fileName),
				zap.Error(err),
			)
			return nil, err
		}
	}

	err = s.gw.RunInTx(ctx, func(st gateway.Stores) error {
		fields, causes, err := checkReferences(ctx, st, req.BreedID, req.BreederID)
		if err != nil {
			return err
		}
		if len(fields) > 0 {
			return rejectAnimal(fields, causes)
		}
		return st.Animals.Save(ctx, a)
	})
	if err != nil {
		if staged != nil {
			s.discardStaged(ctx, staged.fileName, err)
		}
		if domain.IsValidation(err) {
			return nil, err
		}
		s.logger.Error("failed to commit animal", zap.String("name", attrs.Name), zap.Error(err))
		appErr := domain.NewValidationError("animal could not be saved",
			domain.FieldError{Message: "the animal could not be saved, please try again"})
		appErr.Err = err
		return nil, appErr
	}

	s.metrics.AnimalsCreated.Inc()
	s.metrics.ObservePhoto(outcome)
	s.logger.Info("animal created",
		zap.Uint("animal_id", a.ID()),
		zap.Uint("breed_id", a.BreedID()),
		zap.Uint("breeder_id", a.BreederID()),
		zap.String("photo", photo.FileName()),
	)
	emitEvent(ctx, s.publisher, s.logger, events.TopicKennelEvents, events.AnimalCreated, idString(a.ID()),
		events.AnimalCreatedEvent{
			AnimalID:  a.ID(),
			Name:      a.Name(),
			BreedID:   a.BreedID(),
			BreederID: a.BreederID(),
			FileNames: []string{photo.FileName()},
		})

	return &AnimalResult{Animal: toAnimalDTO(a)}, nil
}

// preparePhoto applies the attachment policy. staged is nil whenever the
// sentinel is attached.
func (s *AnimalService) preparePhoto(upload *PhotoUpload, takenAt time.Time) (*animal.Photo, *stagedPhoto, string, error) {
	if upload == nil || upload.Content == nil {
		return animal.NewSentinelPhoto(takenAt), nil, metrics.PhotoSentinel, nil
	}
	sniffed, err := photostore.Sniff(upload.Content)
	if err != nil {
		return nil, nil, "", domain.NewValidationError("invalid photo",
			domain.FieldError{Field: "photo", Message: "could not be read"})
	}
	if !sniffed.Accepted {
		s.logger.Info("photo upload rejected",
			zap.String("original_name", upload.FileName),
			zap.String("content_type", sniffed.ContentType),
			zap.Bool("reported", s.opts.RejectUnsupportedPhotos),
		)
		if !s.opts.RejectUnsupportedPhotos {
			s.metrics.ObservePhoto(metrics.PhotoRejected)
		}
		return animal.NewSentinelPhoto(takenAt), nil, metrics.PhotoSentinel, nil
	}
	name := photostore.NewFileName(upload.FileName)
	return animal.NewStoredPhoto(name, takenAt), &stagedPhoto{fileName: name, body: sniffed.Body}, metrics.PhotoStored, nil
}

func (s *AnimalService) discardStaged(ctx context.Context, fileName string, cause error) {
	if err := s.photos.Delete(ctx, fileName); err != nil {
		s.metrics.IncrementStorageFailure(metrics.StageCleanup)
		s.logger.Error("failed to remove staged photo after rollback",
			zap.String("file_name", fileName),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		emitEvent(ctx, s.publisher, s.logger, events.TopicCleanup, events.PhotoFileOrphaned, fileName,
			events.PhotoFileOrphanedEvent{FileName: fileName, Reason: "create rolled back"})
	}
}

// Update re-validates references and fields, then writes under optimistic
// concurrency. Photos are not changed.
func (s *AnimalService) Update(ctx context.Context, id uint, req AnimalRequest) (*AnimalResult, error) {
	var a *animal.Animal
	err := s.gw.RunInTx(ctx, func(st gateway.Stores) error {
		var err error
		a, err = st.Animals.FindByID(ctx, id, animal.Include{})
		if err != nil {
			return err
		}
		if req.Version != 0 && req.Version != a.Version() {
			return domain.NewConflictError("animal was modified since it was read")
		}

		fields, causes, err := checkReferences(ctx, st, req.BreedID, req.BreederID)
		if err != nil {
			return err
		}
		attrs, attrFields := parseAnimalRequest(req)
		fields = append(fields, attrFields...)
		if len(fields) > 0 {
			return rejectAnimal(fields, causes)
		}

		if err := a.Update(attrs); err != nil {
			return err
		}
		return st.Animals.Update(ctx, a)
	})
	if err != nil {
		if domain.IsConflict(err) {
			return nil, s.resolveConflict(ctx, id, err)
		}
		return nil, err
	}

	s.logger.Info("animal updated", zap.Uint("animal_id", id), zap.Int64("version", a.Version()))
	return &AnimalResult{Animal: toAnimalDTO(a)}, nil
}

// resolveConflict distinguishes a concurrent delete from a concurrent edit.
func (s *AnimalService) resolveConflict(ctx context.Context, id uint, conflict error) error {
	ok, err := s.gw.Stores().Animals.Exists(ctx, id)
	if err != nil {
		return errors.Join(conflict, err)
	}
	if !ok {
		return domain.NewNotFoundError("Animal", idString(id))
	}
	return conflict
}

// Delete removes the animal and its photo rows in one transaction, then
// deletes the stored files. A file that cannot be deleted is reported as a
// warning and queued on the cleanup topic.
func (s *AnimalService) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	var photos []*animal.Photo
	err := s.gw.RunInTx(ctx, func(st gateway.Stores) error {
		var err error
		if photos, err = st.Animals.FindPhotos(ctx, id); err != nil {
			return err
		}
		return st.Animals.Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{AnimalID: id, Photos: len(photos)}
	for _, p := range photos {
		if p.IsSentinel() {
			continue
		}
		if err := s.photos.Delete(ctx, p.FileName()); err != nil {
			s.metrics.IncrementStorageFailure(metrics.StageCleanup)
			s.logger.Warn("failed to delete photo file after animal delete",
				zap.Uint("animal_id", id),
				zap.String("file_name", p.FileName()),
				zap.Error(err),
			)
			result.Warnings = append(result.Warnings, "photo file "+p.FileName()+" could not be deleted and was queued for cleanup")
			emitEvent(ctx, s.publisher, s.logger, events.TopicCleanup, events.PhotoFileOrphaned, p.FileName(),
				events.PhotoFileOrphanedEvent{FileName: p.FileName(), AnimalID: id, Reason: "animal deleted"})
		}
	}

	s.metrics.AnimalsDeleted.Inc()
	s.logger.Info("animal deleted", zap.Uint("animal_id", id), zap.Int("photos", len(photos)))
	emitEvent(ctx, s.publisher, s.logger, events.TopicKennelEvents, events.AnimalDeleted, idString(id),
		events.AnimalDeletedEvent{AnimalID: id, Photos: len(photos)})
	return result, nil
}

// Get returns an animal with the requested relations.
func (s *AnimalService) Get(ctx context.Context, id uint, include animal.Include) (*AnimalDTO, error) {
	a, err := s.gw.Stores().Animals.FindByID(ctx, id, include)
	if err != nil {
		return nil, err
	}
	return toAnimalDTO(a), nil
}

// List returns every animal with the requested relations.
func (s *AnimalService) List(ctx context.Context, include animal.Include) ([]*AnimalDTO, error) {
	animals, err := s.gw.Stores().Animals.List(ctx, include)
	if err != nil {
		return nil, err
	}
	dtos := make([]*AnimalDTO, len(animals))
	for i, a := range animals {
		dtos[i] = toAnimalDTO(a)
	}
	return dtos, nil
}

// SweepPhotos resets photo rows whose stored file is missing to the sentinel.
func (s *AnimalService) SweepPhotos(ctx context.Context) (*SweepReport, error) {
	repo := s.gw.Stores().Animals
	photos, err := repo.ListPhotos(ctx)
	if err != nil {
		return nil, err
	}
	report := &SweepReport{}
	for _, p := range photos {
		if p.IsSentinel() {
			continue
		}
		report.Checked++
		ok, err := s.photos.Exists(ctx, p.FileName())
		if err != nil {
			s.logger.Warn("cannot check photo file", zap.String("file_name", p.FileName()), zap.Error(err))
			continue
		}
		if ok {
			continue
		}
		if err := repo.ResetPhoto(ctx, p.ID()); err != nil {
			return report, err
		}
		report.Repaired++
		s.logger.Info("photo row reset to sentinel",
			zap.Uint("photo_id", p.ID()),
			zap.Uint("animal_id", p.AnimalID()),
			zap.String("missing_file", p.FileName()),
		)
	}
	return report, nil
}

// checkReferences resolves breed then breeder. It returns field errors for
// missing references, the matching sentinel causes, and any storage error.
func checkReferences(ctx context.Context, st gateway.Stores, breedID, breederID uint) ([]domain.FieldError, []error, error) {
	var fields []domain.FieldError
	var causes []error

	ok, err := st.Breeds.Exists(ctx, breedID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		fields = append(fields, domain.FieldError{Field: "breed_id", Message: "select an existing breed"})
		causes = append(causes, animal.ErrMissingBreed)
	}

	ok, err = st.Breeders.Exists(ctx, breederID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		fields = append(fields, domain.FieldError{Field: "breeder_id", Message: "select an existing breeder"})
		causes = append(causes, animal.ErrMissingBreeder)
	}
	return fields, causes, nil
}

// parseAnimalRequest converts form text into attributes and reports every
// field problem at once.
func parseAnimalRequest(req AnimalRequest) (animal.Attributes, []domain.FieldError) {
	var fields []domain.FieldError
	attrs := animal.Attributes{
		Name:           strings.TrimSpace(req.Name),
		RegistryNumber: strings.TrimSpace(req.RegistryNumber),
		BreedID:        req.BreedID,
		BreederID:      req.BreederID,
	}
	bad := make(map[string]bool)

	if v := strings.TrimSpace(req.BirthDate); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "birth_date", Message: "must be a date (YYYY-MM-DD)"})
			bad["birth_date"] = true
		}
		attrs.BirthDate = d
	}
	if v := strings.TrimSpace(req.PurchaseDate); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "purchase_date", Message: "must be a date (YYYY-MM-DD)"})
		} else {
			attrs.PurchaseDate = &d
		}
	}
	cents, err := animal.ParsePriceCents(req.PurchasePrice)
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "purchase_price", Message: err.Error()})
	}
	attrs.PurchasePriceCents = cents
	if strings.TrimSpace(req.Sex) != "" {
		sex, err := animal.ParseSex(req.Sex)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "sex", Message: "must be F or M"})
			bad["sex"] = true
		}
		attrs.Sex = sex
	}

	for _, f := range animal.ValidateAttributes(attrs) {
		if !bad[f.Field] {
			fields = append(fields, f)
		}
	}
	return attrs, fields
}

func rejectAnimal(fields []domain.FieldError, causes []error) error {
	appErr := domain.NewValidationError("animal input is invalid", fields...)
	if len(causes) > 0 {
		appErr.Err = errors.Join(causes...)
	}
	return appErr
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
