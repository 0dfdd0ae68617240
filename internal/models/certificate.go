package models

import "time"

type Certificate struct {
	ID        string    `db:"id" json:"id"`
	CPF       string    `db:"cpf" json:"cpf"`
	Registro  string    `db:"registro" json:"registro"`
	Matricula string    `db:"matricula" json:"matricula"`
	Nome      string    `db:"nome" json:"nome"`
	Curso     string    `db:"curso" json:"curso"`
	Inicio    time.Time `db:"inicio" json:"inicio"`
	Fim       time.Time `db:"fim" json:"fim"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CertificateUpdate is a partial update. Only non-nil fields are applied;
// CPF must already be normalized.
type CertificateUpdate struct {
	CPF       *string
	Registro  *string
	Matricula *string
	Nome      *string
	Curso     *string
	Inicio    *time.Time
	Fim       *time.Time
}
