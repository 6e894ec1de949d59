package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type EventStatus string

const (
	StatusActive   EventStatus = "active"
	StatusInactive EventStatus = "inactive"
)

func (s EventStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

type Category string

const (
	CategoryTechnology Category = "Technology"
	CategoryBusiness   Category = "Business"
	CategoryMusic      Category = "Music"
	CategorySports     Category = "Sports"
	CategoryEducation  Category = "Education"
	CategoryHealth     Category = "Health"
	CategoryArts       Category = "Arts"
	CategoryFood       Category = "Food"
	CategoryTravel     Category = "Travel"
	CategoryOther      Category = "Other"
)

var categories = []Category{
	CategoryTechnology, CategoryBusiness, CategoryMusic, CategorySports, CategoryEducation,
	CategoryHealth, CategoryArts, CategoryFood, CategoryTravel, CategoryOther,
}

// Categories returns the fixed category list in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func (c Category) Valid() bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}

type Event struct {
	ID                  ID          `json:"id,omitempty"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Date                string      `json:"date"`
	Time                string      `json:"time"`
	Location            string      `json:"location"`
	Capacity            int         `json:"capacity"`
	RegisteredAttendees int         `json:"registeredAttendees"`
	Price               float64     `json:"price"`
	Category            Category    `json:"category"`
	Status              EventStatus `json:"status"`
	CreatedBy           ID          `json:"createdBy"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           *time.Time  `json:"updatedAt,omitempty"`
}

// StartsAt combines Date and Time into one instant in loc.
func (e Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+normalizeClock(e.Time), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %s: bad date/time %q %q: %w", e.ID, e.Date, e.Time, err)
	}
	return t, nil
}

// Day is the calendar date of the event at midnight in loc.
func (e Event) Day(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, e.Date, loc)
}

func (e Event) IsActive() bool { return e.Status == StatusActive }

func (e Event) IsFull() bool { return e.RegisteredAttendees >= e.Capacity }

func (e Event) HasAvailability() bool { return e.RegisteredAttendees < e.Capacity }

func (e Event) SeatsLeft() int {
	if e.IsFull() {
		return 0
	}
	return e.Capacity - e.RegisteredAttendees
}

// Input projects the editable fields for validation.
func (e Event) Input() EventInput {
	return EventInput{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Category:    e.Category,
		Price:       e.Price,
	}
}

// EventInput is the editable surface of an event.
type EventInput struct {
	Title       string   `json:"title" validate:"required,min=5,max=100"`
	Description string   `json:"description" validate:"required,min=20,max=1000"`
	Date        string   `json:"date" validate:"required,not_past_date"`
	Time        string   `json:"time" validate:"required,hhmm"`
	Location    string   `json:"location" validate:"required,min=5,max=200"`
	Capacity    int      `json:"capacity" validate:"min=1,max=10000"`
	Category    Category `json:"category" validate:"required,category"`
	Price       float64  `json:"price" validate:"min=0,max=10000"`
}

func (in EventInput) Trimmed() EventInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Location = strings.TrimSpace(in.Location)
	in.Category = Category(strings.TrimSpace(string(in.Category)))
	return in
}

// EventPatch carries a partial update; nil fields are left alone.
type EventPatch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Date        *string      `json:"date,omitempty"`
	Time        *string      `json:"time,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Capacity    *int         `json:"capacity,omitempty"`
	Category    *Category    `json:"category,omitempty"`
	Price       *float64     `json:"price,omitempty"`
	Status      *EventStatus `json:"status,omitempty"`
}

func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Time == nil &&
		p.Location == nil && p.Capacity == nil && p.Category == nil && p.Price == nil && p.Status == nil
}

// Apply merges the patch into e. Text fields are trimmed; sanitizing is left to the caller.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		e.Date = strings.TrimSpace(*p.Date)
	}
	if p.Time != nil {
		e.Time = strings.TrimSpace(*p.Time)
	}
	if p.Location != nil {
		e.Location = strings.TrimSpace(*p.Location)
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Category != nil {
		e.Category = Category(strings.TrimSpace(string(*p.Category)))
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
}

// normalizeClock pads "9:30" to "09:30"; the time pattern accepts a single hour digit.
func normalizeClock(s string) string {
	if len(s) == 4 && s[1] == ':' {
		return "0" + s
	}
	return s
}
