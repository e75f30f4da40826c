package repository

import "github.com/healthhive/healthhive/internal/domain"

func fp(v float64) *float64 { return &v }

// DefaultCatalog returns the built-in reference catalog. The standalone
// SQLite store seeds from it on first run; the rows match the Postgres
// migration seed.
func DefaultCatalog() []domain.ReferenceDefinition {
	return []domain.ReferenceDefinition{
		{
			TestCode: "HB", TestName: "Hemoglobin",
			Aliases: []string{"Hemoglobin", "Haemoglobin", "Hb", "HGB"},
			Panel:   domain.PanelCBC, Unit: "g/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 17, Gender: domain.GenderAll, MinNormal: 11, MaxNormal: 15},
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderMale, MinNormal: 13, MaxNormal: 17},
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderFemale, MinNormal: 12, MaxNormal: 15.5},
			},
			CriticalLow: fp(7), CriticalHigh: fp(20),
		},
		{
			TestCode: "WBC", TestName: "White Blood Cell Count",
			Aliases: []string{"WBC", "Total Leukocyte Count", "White Blood Cell", "TLC"},
			Panel:   domain.PanelCBC, Unit: "cells/mcL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 4000, MaxNormal: 11000},
			},
			CriticalLow: fp(1000), CriticalHigh: fp(50000),
		},
		{
			TestCode: "RBC", TestName: "Red Blood Cell Count",
			Aliases: []string{"RBC", "Red Blood Cell", "Total RBC Count"},
			Panel:   domain.PanelCBC, Unit: "mill/mcL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderMale, MinNormal: 4.5, MaxNormal: 5.9},
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderFemale, MinNormal: 4.1, MaxNormal: 5.1},
				{MinAge: 0, MaxAge: 17, Gender: domain.GenderAll, MinNormal: 4.0, MaxNormal: 5.5},
			},
		},
		{
			TestCode: "PLT", TestName: "Platelet Count",
			Aliases: []string{"Platelet Count", "Platelets", "PLT"},
			Panel:   domain.PanelCBC, Unit: "cells/mcL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 150000, MaxNormal: 450000},
			},
			CriticalLow: fp(20000), CriticalHigh: fp(1000000),
		},
		{
			TestCode: "CREAT", TestName: "Serum Creatinine",
			Aliases: []string{"Creatinine", "Serum Creatinine", "S. Creatinine"},
			Panel:   domain.PanelRFT, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderMale, MinNormal: 0.7, MaxNormal: 1.3},
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderFemale, MinNormal: 0.6, MaxNormal: 1.1},
				{MinAge: 0, MaxAge: 17, Gender: domain.GenderAll, MinNormal: 0.3, MaxNormal: 0.7},
			},
			CriticalHigh: fp(10),
		},
		{
			TestCode: "UREA", TestName: "Blood Urea",
			Aliases: []string{"Urea", "Blood Urea", "Serum Urea"},
			Panel:   domain.PanelRFT, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 15, MaxNormal: 40},
			},
			CriticalHigh: fp(200),
		},
		{
			TestCode: "BUN", TestName: "Blood Urea Nitrogen",
			Aliases: []string{"BUN", "Blood Urea Nitrogen"},
			Panel:   domain.PanelRFT, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 7, MaxNormal: 20},
			},
			CriticalHigh: fp(100),
		},
		{
			TestCode: "URIC", TestName: "Uric Acid",
			Aliases: []string{"Uric Acid", "Serum Uric Acid"},
			Panel:   domain.PanelRFT, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderMale, MinNormal: 3.4, MaxNormal: 7.0},
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderFemale, MinNormal: 2.4, MaxNormal: 6.0},
			},
		},
		{
			TestCode: "ALT", TestName: "Alanine Aminotransferase",
			Aliases: []string{"ALT", "SGPT", "Alanine Aminotransferase"},
			Panel:   domain.PanelLFT, Unit: "U/L",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 7, MaxNormal: 56},
			},
			CriticalHigh: fp(1000),
		},
		{
			TestCode: "AST", TestName: "Aspartate Aminotransferase",
			Aliases: []string{"AST", "SGOT", "Aspartate Aminotransferase"},
			Panel:   domain.PanelLFT, Unit: "U/L",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 10, MaxNormal: 40},
			},
			CriticalHigh: fp(1000),
		},
		{
			TestCode: "BILI", TestName: "Total Bilirubin",
			Aliases: []string{"Total Bilirubin", "Bilirubin Total", "Bilirubin", "T. Bilirubin"},
			Panel:   domain.PanelLFT, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 0.1, MaxNormal: 1.2},
			},
			CriticalHigh: fp(15),
		},
		{
			TestCode: "ALP", TestName: "Alkaline Phosphatase",
			Aliases: []string{"Alkaline Phosphatase", "ALP"},
			Panel:   domain.PanelLFT, Unit: "U/L",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 44, MaxNormal: 147},
				{MinAge: 0, MaxAge: 17, Gender: domain.GenderAll, MinNormal: 80, MaxNormal: 350},
			},
		},
		{
			TestCode: "CHOL", TestName: "Total Cholesterol",
			Aliases: []string{"Total Cholesterol", "Cholesterol", "Serum Cholesterol"},
			Panel:   domain.PanelLipid, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 0, MaxNormal: 200},
			},
			CriticalHigh: fp(300),
		},
		{
			TestCode: "HDL", TestName: "HDL Cholesterol",
			Aliases: []string{"HDL Cholesterol", "HDL-C", "HDL"},
			Panel:   domain.PanelLipid, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderMale, MinNormal: 40, MaxNormal: 200},
				{MinAge: 18, MaxAge: 120, Gender: domain.GenderFemale, MinNormal: 50, MaxNormal: 200},
			},
		},
		{
			TestCode: "LDL", TestName: "LDL Cholesterol",
			Aliases: []string{"LDL Cholesterol", "LDL-C", "LDL"},
			Panel:   domain.PanelLipid, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 0, MaxNormal: 130},
			},
			CriticalHigh: fp(250),
		},
		{
			TestCode: "TRIG", TestName: "Triglycerides",
			Aliases: []string{"Triglycerides", "TG", "Serum Triglycerides"},
			Panel:   domain.PanelLipid, Unit: "mg/dL",
			AgeGroups: []domain.AgeGroupRange{
				{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 0, MaxNormal: 150},
			},
			CriticalHigh: fp(1000),
		},
	}
}
