package domain

import "github.com/google/uuid"

// Reference collections mirrored by the sync layer alongside the scheduling
// entities. They carry no scheduling rules of their own.

type Department struct {
	ID   uuid.UUID
	Name string
}

func (d Department) EntityID() uuid.UUID { return d.ID }

type Provider struct {
	ID           uuid.UUID
	DepartmentID uuid.UUID
	Name         string
	Specialty    string
}

func (p Provider) EntityID() uuid.UUID { return p.ID }

type Patient struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

func (p Patient) EntityID() uuid.UUID { return p.ID }
