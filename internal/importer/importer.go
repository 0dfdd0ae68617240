// Package importer loads legacy certificate lists into the certificate store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vaughan-dsouza/certportal/internal/cpf"
	"github.com/vaughan-dsouza/certportal/internal/models"
)

// legacyDateLayout is dd/mm/yyyy; single-digit day and month are accepted.
const legacyDateLayout = "2/1/2006"

// Record is one entry of a legacy list. JSON input decodes too, since JSON
// is valid YAML.
type Record struct {
	CPF       string `yaml:"cpf"`
	Registro  string `yaml:"registro"`
	Matricula string `yaml:"matricula"`
	Nome      string `yaml:"nome"`
	Curso     string `yaml:"curso"`
	Inicio    string `yaml:"inicio"`
	Fim       string `yaml:"fim"`
}

type Inserter interface {
	CreateMany(ctx context.Context, certs []models.Certificate) error
}

// Parse reads every record from r and converts it. The first invalid row
// aborts with its 1-based row number.
func Parse(r io.Reader) ([]models.Certificate, error) {
	var records []Record
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("importer: input is empty")
		}
		return nil, fmt.Errorf("importer: decode: %w", err)
	}

	certs := make([]models.Certificate, 0, len(records))
	for i, rec := range records {
		c, err := rec.Certificate()
		if err != nil {
			if key, ok := cpf.Normalize(rec.CPF); ok {
				return nil, fmt.Errorf("importer: row %d (CPF %s): %w", i+1, cpf.Format(key), err)
			}
			return nil, fmt.Errorf("importer: row %d: %w", i+1, err)
		}
		certs = append(certs, c)
	}
	return certs, nil
}

// Certificate validates the record and converts it.
func (r Record) Certificate() (models.Certificate, error) {
	key, ok := cpf.Normalize(r.CPF)
	if !ok {
		return models.Certificate{}, fmt.Errorf("invalid CPF %q", r.CPF)
	}

	for _, f := range []struct{ name, value string }{
		{"registro", r.Registro},
		{"matricula", r.Matricula},
		{"nome", r.Nome},
		{"curso", r.Curso},
	} {
		if strings.TrimSpace(f.value) == "" {
			return models.Certificate{}, fmt.Errorf("%s is required", f.name)
		}
	}

	inicio, err := ParseLegacyDate(r.Inicio)
	if err != nil {
		return models.Certificate{}, fmt.Errorf("inicio: %w", err)
	}
	fim, err := ParseLegacyDate(r.Fim)
	if err != nil {
		return models.Certificate{}, fmt.Errorf("fim: %w", err)
	}

	return models.Certificate{
		CPF:       key,
		Registro:  r.Registro,
		Matricula: r.Matricula,
		Nome:      r.Nome,
		Curso:     r.Curso,
		Inicio:    inicio,
		Fim:       fim,
	}, nil
}

// ParseLegacyDate reads dd/mm/yyyy as UTC midnight.
func ParseLegacyDate(s string) (time.Time, error) {
	t, err := time.Parse(legacyDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want dd/mm/yyyy", s)
	}
	return t, nil
}

// Import parses r and, unless dryRun is set, inserts everything in one
// batch. It returns the number of records read.
func Import(ctx context.Context, r io.Reader, dst Inserter, dryRun bool) (int, error) {
	certs, err := Parse(r)
	if err != nil {
		return 0, err
	}
	if dryRun || len(certs) == 0 {
		return len(certs), nil
	}
	if err := dst.CreateMany(ctx, certs); err != nil {
		return 0, fmt.Errorf("importer: %w", err)
	}
	return len(certs), nil
}
