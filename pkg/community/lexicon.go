package community

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GeneralMedicine is the specialty assigned when no category scores a hit.
const GeneralMedicine = "General Medicine"

// Specialty is one domain category of the specialty lexicon. Declaration
// order matters: ties in keyword scoring are broken by position.
type Specialty struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultLexicon returns the built-in medical specialty lexicon.
func DefaultLexicon() []Specialty {
	return []Specialty{
		{Name: "Cardiology", Keywords: []string{"heart", "cardiac", "aortic", "hypertension", "ejection fraction", "valve", "coronary", "myocardial", "arrhythmia"}},
		{Name: "Gastroenterology", Keywords: []string{"liver", "hepatic", "cirrhosis", "abdomen", "hernia", "ascites", "bowel", "intestine", "gastric", "colon", "gi", "endoscopy"}},
		{Name: "Orthopedics", Keywords: []string{"hip", "knee", "bone", "joint", "replacement", "osteoporosis", "fracture", "orthopedic", "prosthesis"}},
		{Name: "Pharmacology", Keywords: []string{"medication", "drug", "treatment", "therapy", "prescription", "dose", "mg", "administration"}},
		{Name: "Laboratory Medicine", Keywords: []string{"lab", "test", "value", "anion gap", "levels", "blood", "urine", "serum", "plasma", "culture"}},
		{Name: "Pulmonology", Keywords: []string{"lung", "pulmonary", "respiratory", "sarcoidosis", "breathing", "oxygen", "ventilation"}},
		{Name: "Nephrology", Keywords: []string{"kidney", "renal", "failure", "dialysis", "creatinine", "urinary", "nephro"}},
		{Name: "Endocrinology", Keywords: []string{"insulin", "diabetes", "hormone", "dextrose", "glucose", "thyroid", "endocrine"}},
		{Name: "Hematology", Keywords: []string{"blood", "anemia", "platelet", "hemoglobin", "coagulation", "hematocrit", "leukocyte"}},
		{Name: "Neurology", Keywords: []string{"brain", "neurological", "seizure", "stroke", "neuro", "cognitive"}},
		{Name: "Infectious Disease", Keywords: []string{"infection", "antibiotic", "sepsis", "fever", "culture", "bacterial", "viral"}},
	}
}

// LoadLexicon reads a specialty lexicon from a YAML file, a list of
// {name, keywords} entries in priority order.
func LoadLexicon(path string) ([]Specialty, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	var lexicon []Specialty
	if err := yaml.Unmarshal(data, &lexicon); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file: %w", err)
	}
	if len(lexicon) == 0 {
		return nil, fmt.Errorf("lexicon file %s holds no specialties", path)
	}
	for i, s := range lexicon {
		if s.Name == "" {
			return nil, fmt.Errorf("lexicon entry %d has no name", i)
		}
	}
	return lexicon, nil
}
