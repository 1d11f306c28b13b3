package animal

import "time"

const (
	// SentinelFileName marks a photo row with no uploaded bytes behind it.
	SentinelFileName = "noAnimal.jpg"
	// NoPhotoLocation is the status note stored alongside the sentinel.
	NoPhotoLocation = "no photo"
)

// Photo is an attachment owned by exactly one Animal.
type Photo struct {
	id       uint
	animalID uint
	takenAt  time.Time
	location string
	fileName string
}

// NewSentinelPhoto returns the placeholder used when no usable image was supplied.
func NewSentinelPhoto(takenAt time.Time) *Photo {
	return &Photo{takenAt: takenAt, location: NoPhotoLocation, fileName: SentinelFileName}
}

// NewStoredPhoto references bytes saved under fileName in the Photo Store.
func NewStoredPhoto(fileName string, takenAt time.Time) *Photo {
	return &Photo{takenAt: takenAt, fileName: fileName}
}

// ReconstructPhoto rebuilds a Photo from persistence.
func ReconstructPhoto(id, animalID uint, takenAt time.Time, location, fileName string) *Photo {
	return &Photo{id: id, animalID: animalID, takenAt: takenAt, location: location, fileName: fileName}
}

func (p *Photo) ID() uint           { return p.id }
func (p *Photo) AnimalID() uint     { return p.animalID }
func (p *Photo) TakenAt() time.Time { return p.takenAt }
func (p *Photo) Location() string   { return p.location }
func (p *Photo) FileName() string   { return p.fileName }

// IsSentinel reports whether the photo has no stored file.
func (p *Photo) IsSentinel() bool { return p.fileName == SentinelFileName }

// AssignIDs records the keys generated on insert.
func (p *Photo) AssignIDs(id, animalID uint) {
	p.id = id
	p.animalID = animalID
}
