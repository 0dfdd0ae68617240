package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vaughan-dsouza/certportal/internal/models"
	"github.com/vaughan-dsouza/certportal/internal/testutil"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newCert(cpf, registro string, inicio time.Time) models.Certificate {
	return models.Certificate{
		CPF:       cpf,
		Registro:  registro,
		Matricula: "M-" + registro,
		Nome:      "Maria da Silva",
		Curso:     "Enfermagem",
		Inicio:    inicio,
		Fim:       inicio.AddDate(1, 0, 0),
	}
}

func TestCertificateCreateAndFindByCPF(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	s := NewCertificateStore(testutil.NewDB(t), clock)

	older := newCert("12345678901", "R-1", date(2020, time.March, 1))
	newer := newCert("12345678901", "R-2", date(2023, time.August, 15))
	other := newCert("98765432100", "R-3", date(2021, time.January, 10))

	for _, c := range []*models.Certificate{&older, &newer, &other} {
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if c.ID == "" {
			t.Fatal("Create did not assign an id")
		}
		clock.Advance(time.Minute)
	}

	got, err := s.FindByCPF(ctx, "12345678901")
	if err != nil {
		t.Fatalf("FindByCPF: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindByCPF returned %d records, want 2", len(got))
	}
	if got[0].Registro != "R-2" || got[1].Registro != "R-1" {
		t.Errorf("order = %s, %s; want R-2, R-1", got[0].Registro, got[1].Registro)
	}
	if !got[0].Inicio.Equal(date(2023, time.August, 15)) {
		t.Errorf("Inicio = %v", got[0].Inicio)
	}

	none, err := s.FindByCPF(ctx, "00000000000")
	if err != nil {
		t.Fatalf("FindByCPF unknown: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("unknown cpf = %#v, want empty slice", none)
	}
}

func TestCertificateFindAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	s := NewCertificateStore(testutil.NewDB(t), clock)

	for _, reg := range []string{"R-1", "R-2", "R-3"} {
		c := newCert("12345678901", reg, date(2022, time.May, 1))
		if err := s.Create(ctx, &c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		clock.Advance(time.Second)
	}

	all, err := s.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].Registro != "R-3" || all[2].Registro != "R-1" {
		t.Errorf("order = %s..%s, want R-3..R-1", all[0].Registro, all[2].Registro)
	}
}

func TestCertificatePartialUpdate(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	s := NewCertificateStore(testutil.NewDB(t), clock)

	orig := newCert("12345678901", "R-1", date(2020, time.March, 1))
	if err := s.Create(ctx, &orig); err != nil {
		t.Fatalf("Create: %v", err)
	}
	clock.Advance(time.Hour)

	curso := "Radiologia"
	got, err := s.Update(ctx, orig.ID, models.CertificateUpdate{Curso: &curso})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got.Curso != "Radiologia" {
		t.Errorf("Curso = %q", got.Curso)
	}
	if got.CPF != orig.CPF || got.Nome != orig.Nome || got.Registro != orig.Registro || got.Matricula != orig.Matricula {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if !got.Inicio.Equal(orig.Inicio) || !got.Fim.Equal(orig.Fim) {
		t.Errorf("dates changed: %v - %v", got.Inicio, got.Fim)
	}
	if !got.UpdatedAt.After(orig.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: %v", got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("CreatedAt changed: %v", got.CreatedAt)
	}

	same, err := s.Update(ctx, orig.ID, models.CertificateUpdate{})
	if err != nil {
		t.Fatalf("empty Update: %v", err)
	}
	if same.Curso != "Radiologia" {
		t.Errorf("empty update changed record: %+v", same)
	}
}

func TestCertificateMissingTargets(t *testing.T) {
	ctx := context.Background()
	s := NewCertificateStore(testutil.NewDB(t), nil)

	nome := "X"
	if _, err := s.Update(ctx, "missing", models.CertificateUpdate{Nome: &nome}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Update missing: %v", err)
	}
	if _, err := s.Update(ctx, "missing", models.CertificateUpdate{}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("empty Update missing: %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Delete missing: %v", err)
	}
	if _, err := s.FindByID(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("FindByID missing: %v", err)
	}
}

func TestCertificateDelete(t *testing.T) {
	ctx := context.Background()
	s := NewCertificateStore(testutil.NewDB(t), nil)

	c := newCert("12345678901", "R-1", date(2020, time.March, 1))
	if err := s.Create(ctx, &c); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, c.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second Delete: %v", err)
	}
}

func TestCertificateCreateMany(t *testing.T) {
	ctx := context.Background()
	s := NewCertificateStore(testutil.NewDB(t), nil)

	batch := []models.Certificate{
		newCert("12345678901", "R-1", date(2019, time.February, 1)),
		newCert("12345678901", "R-2", date(2020, time.February, 1)),
	}
	if err := s.CreateMany(ctx, batch); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if batch[0].ID == "" || batch[1].ID == "" || batch[0].ID == batch[1].ID {
		t.Errorf("ids = %q, %q", batch[0].ID, batch[1].ID)
	}

	got, err := s.FindByCPF(ctx, "12345678901")
	if err != nil || len(got) != 2 {
		t.Fatalf("FindByCPF = %d, %v", len(got), err)
	}
}
