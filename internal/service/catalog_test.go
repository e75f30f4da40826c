package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/domain"
)

// memCatalog is a fixed in-memory ReferenceCatalog for engine tests.
type memCatalog struct {
	refs []domain.ReferenceDefinition
	err  error
}

func (m *memCatalog) GetReferencesByPanel(_ context.Context, panel domain.Panel) ([]domain.ReferenceDefinition, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.ReferenceDefinition
	for _, ref := range m.refs {
		if ref.Panel == panel {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (m *memCatalog) GetReferenceByCode(_ context.Context, testCode string) (*domain.ReferenceDefinition, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.refs {
		if m.refs[i].TestCode == testCode {
			return &m.refs[i], nil
		}
	}
	return nil, fmt.Errorf("reference %s: %w", testCode, domain.ErrNotFound)
}

var errCatalogDown = errors.New("catalog unreachable")

// testCatalog covers all four panels with realistic adult ranges.
func testCatalog() *memCatalog {
	return &memCatalog{refs: []domain.ReferenceDefinition{
		{
			TestCode: "HB", TestName: "Hemoglobin",
			Aliases: []string{"Hemoglobin", "Hb", "HGB"},
			Panel:   domain.PanelCBC, Unit: "g/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderMale, MinNormal: 13, MaxNormal: 17},
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderFemale, MinNormal: 12, MaxNormal: 15.5},
			},
			CriticalLow: floatPtr(7), CriticalHigh: floatPtr(20),
		},
		{
			TestCode: "WBC", TestName: "White Blood Cell Count",
			Aliases: []string{"WBC", "Total Leukocyte Count", "White Blood Cell"},
			Panel:   domain.PanelCBC, Unit: "cells/mcL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 4000, MaxNormal: 11000},
			},
		},
		{
			TestCode: "PLT", TestName: "Platelet Count",
			Aliases: []string{"Platelet Count", "Platelets", "PLT"},
			Panel:   domain.PanelCBC, Unit: "cells/mcL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 150000, MaxNormal: 450000},
			},
		},
		{
			TestCode: "CREAT", TestName: "Serum Creatinine",
			Aliases: []string{"Creatinine", "Serum Creatinine", "S. Creatinine"},
			Panel:   domain.PanelRFT, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderMale, MinNormal: 0.7, MaxNormal: 1.3},
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderFemale, MinNormal: 0.6, MaxNormal: 1.1},
			},
			CriticalHigh: floatPtr(10),
		},
		{
			TestCode: "UREA", TestName: "Blood Urea",
			Aliases: []string{"Urea", "Blood Urea", "Serum Urea"},
			Panel:   domain.PanelRFT, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 15, MaxNormal: 40},
			},
		},
		{
			TestCode: "ALT", TestName: "Alanine Aminotransferase",
			Aliases: []string{"ALT", "SGPT", "Alanine Aminotransferase"},
			Panel:   domain.PanelLFT, Unit: "U/L",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 7, MaxNormal: 56},
			},
		},
		{
			TestCode: "CHOL", TestName: "Total Cholesterol",
			Aliases: []string{"Total Cholesterol", "Cholesterol"},
			Panel:   domain.PanelLipid, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 0, MaxNormal: 200},
			},
			CriticalHigh: floatPtr(300),
		},
	}}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
