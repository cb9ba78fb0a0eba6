// Package recommend maps free-text symptom descriptions to a ranked list
// of active doctors, blending direct keyword matches against a static
// specialization knowledge base with an external vector similarity
// search. The vector collaborator is optional; without it the engine
// degrades to keyword-only scoring.
package recommend

import "strings"

// SpecializationProfile describes one specialization in the knowledge
// base: what it covers, the conditions it treats, the symptom phrases
// patients use, and the procedures it performs.
type SpecializationProfile struct {
	CoreFocus         string
	ConditionsTreated []string
	SymptomKeywords   []string
	ProceduresTests   []string
}

// KnowledgeBase holds the static per-specialization matching data used
// by both the keyword scorer and the vector-index passages.
var KnowledgeBase = map[string]SpecializationProfile{
	"Cardiology": {
		CoreFocus: "Heart and blood vessels (Cardiovascular system).",
		ConditionsTreated: []string{
			"Coronary artery disease", "Heart failure", "Hypertension (high blood pressure)",
			"Arrhythmia", "High cholesterol", "Heart attack (Myocardial Infarction)", "Valvular heart disease",
		},
		SymptomKeywords: []string{
			"chest pain", "chest pressure", "shortness of breath", "palpitations", "fluttering heart",
			"racing heart", "irregular heartbeat", "dizziness", "fainting", "syncope", "swollen legs",
			"edema", "high blood pressure", "fatigue with exertion", "pain in arm or jaw",
		},
		ProceduresTests: []string{"ECG", "EKG", "echocardiogram", "stress test", "cardiac catheterization", "stent"},
	},
	"Dermatology": {
		CoreFocus: "Skin, hair, and nails.",
		ConditionsTreated: []string{
			"Acne", "Eczema (Atopic Dermatitis)", "Psoriasis", "Warts", "Skin cancer", "Melanoma",
			"Rosacea", "Moles", "Fungal infections", "Alopecia (hair loss)",
		},
		SymptomKeywords: []string{
			"rash", "itchy skin", "pruritus", "changing mole", "new mole", "skin lesion", "skin growth",
			"hair loss", "bald patches", "nail discoloration", "brittle nails", "hives", "blisters",
			"dry skin", "acne", "pimples", "cysts",
		},
		ProceduresTests: []string{"skin biopsy", "mole mapping", "cryotherapy", "light therapy"},
	},
	"ENT(Otolaryngology)": {
		CoreFocus: "Ear, Nose, and Throat (ENT), and related head/neck structures.",
		ConditionsTreated: []string{
			"Sinusitis (sinus infection)", "Hearing loss", "Tonsillitis", "Vertigo", "Sleep apnea",
			"Allergic rhinitis", "Thyroid disorders", "Voice disorders",
		},
		SymptomKeywords: []string{
			"sore throat", "sinus pain", "sinus pressure", "nasal congestion", "stuffy nose", "runny nose",
			"hearing loss", "muffled hearing", "ringing in ears", "tinnitus", "dizziness", "vertigo",
			"room spinning", "balance problems", "trouble swallowing", "dysphagia", "hoarseness", "losing voice",
			"snoring", "earache", "ear pain", "lump in neck",
		},
		ProceduresTests: []string{"audiogram (hearing test)", "endoscopy", "laryngoscopy", "sleep study"},
	},
	"Gynecology": {
		CoreFocus: "Female reproductive system health.",
		ConditionsTreated: []string{
			"Menstrual disorders", "Pelvic pain", "Uterine fibroids", "Ovarian cysts", "Endometriosis",
			"Vaginal infections (e.g., yeast infection)", "Cervical dysplasia", "Menopause",
		},
		SymptomKeywords: []string{
			"painful periods", "heavy periods", "irregular periods", "pelvic pain", "vaginal itching",
			"unusual discharge", "pain during intercourse", "birth control", "contraception", "pap smear",
			"menopause symptoms", "hot flashes", "pcos",
		},
		ProceduresTests: []string{"Pap test", "pelvic exam", "ultrasound", "colposcopy", "IUD insertion"},
	},
	"Neurology": {
		CoreFocus: "Nervous system (brain, spinal cord, nerves).",
		ConditionsTreated: []string{
			"Migraine", "Headaches", "Epilepsy (seizures)", "Stroke", "Parkinson's disease",
			"Multiple Sclerosis (MS)", "Dementia", "Alzheimer's disease", "Neuropathy",
		},
		SymptomKeywords: []string{
			"headache", "migraine", "seizure", "numbness", "tingling", "pins and needles", "muscle weakness",
			"loss of coordination", "balance issues", "memory loss", "confusion", "tremors", "shaking",
			"dizziness", "slurred speech", "vision problems", "nerve pain", "sciatica",
		},
		ProceduresTests: []string{"MRI", "CT scan", "EEG", "EMG", "lumbar puncture"},
	},
	"Orthopedics": {
		CoreFocus: "Musculoskeletal system (bones, joints, ligaments, muscles).",
		ConditionsTreated: []string{
			"Bone fractures", "Sports injuries", "ACL tear", "Torn meniscus", "Arthritis (Osteoarthritis)",
			"Back pain", "Carpal tunnel syndrome", "Tendonitis", "Rotator cuff tear",
		},
		SymptomKeywords: []string{
			"joint pain", "knee pain", "shoulder pain", "hip pain", "back pain", "broken bone", "fracture",
			"sprain", "strain", "swollen joint", "limited range of motion", "clicking joint", "popping joint",
			"numbness in hand", "sports injury",
		},
		ProceduresTests: []string{"X-ray", "MRI", "joint replacement surgery", "arthroscopy"},
	},
	"Pediatrics": {
		CoreFocus: "Medical care for infants, children, and adolescents.",
		ConditionsTreated: []string{
			"Childhood illnesses", "Ear infections (Otitis Media)", "Asthma", "Developmental delays",
			"ADHD", "Common cold and flu",
		},
		SymptomKeywords: []string{
			"fever", "cough", "rash", "vomiting", "diarrhea", "earache", "sore throat",
			"vaccinations", "immunizations", "well-child check-up", "growth concerns",
			"developmental milestones", "my child", "my baby", "my son", "my daughter",
		},
		ProceduresTests: []string{"vaccination shots", "developmental screening", "hearing and vision tests"},
	},
	"Physical Therapy": {
		CoreFocus: "Rehabilitation to restore movement, function, and reduce pain.",
		ConditionsTreated: []string{
			"Post-surgical recovery (e.g., knee replacement)", "Sports injuries", "Chronic pain",
			"Mobility issues", "Back and neck pain",
		},
		SymptomKeywords: []string{
			"rehab", "rehabilitation", "recovery after surgery", "improve mobility", "regain strength",
			"strengthening exercises", "physical therapy", "physiotherapy", "manage pain", "improve movement",
			"poor posture", "stiffness",
		},
		ProceduresTests: []string{"therapeutic exercise", "manual therapy", "gait analysis"},
	},
	"Allergist": {
		CoreFocus: "Allergies, asthma, and immune system disorders.",
		ConditionsTreated: []string{
			"Allergic Rhinitis (Hay Fever)", "Asthma", "Food allergies", "Eczema", "Hives (Urticaria)",
			"Anaphylaxis",
		},
		SymptomKeywords: []string{
			"sneezing", "runny nose", "stuffy nose", "itchy eyes", "watery eyes", "hives", "allergic rash",
			"wheezing", "shortness of breath", "coughing", "food allergy", "pollen", "dust", "pet allergy",
			"seasonal allergies",
		},
		ProceduresTests: []string{"skin prick test", "allergy blood test", "immunotherapy (allergy shots)"},
	},
	"General Physician": {
		CoreFocus: "Primary point of contact for general and preventive healthcare.",
		ConditionsTreated: []string{
			"Common cold", "Flu (Influenza)", "Diabetes management", "High blood pressure management",
			"General health check-ups", "Minor infections",
		},
		SymptomKeywords: []string{
			"check-up", "annual physical", "vaccination", "flu shot", "general wellness", "not feeling well",
			"prescription refill", "referral", "screening", "cold symptoms", "fever", "sore throat", "routine care",
		},
		ProceduresTests: []string{"blood pressure check", "blood tests", "health screenings"},
	},
	"Oncology": {
		CoreFocus: "Diagnosis and treatment of cancer and tumors.",
		ConditionsTreated: []string{
			"Cancer", "Tumors", "Leukemia", "Lymphoma", "Melanoma", "Breast cancer",
			"Lung cancer", "Colon cancer", "Prostate cancer", "Ovarian cancer",
		},
		SymptomKeywords: []string{
			"unexplained weight loss", "lump", "mass", "tumor", "persistent fatigue",
			"night sweats", "coughing up blood", "blood in stool", "a sore that does not heal",
			"changes in bowel habits", "difficulty swallowing", "family history of cancer",
			"cancer diagnosis", "chemotherapy", "radiation", "new lump", "painless lump",
		},
		ProceduresTests: []string{
			"Biopsy", "Chemotherapy", "Radiation therapy", "Immunotherapy",
			"Targeted therapy", "PET scan", "CT scan", "Tumor markers",
		},
	},
}

// BuildPassage assembles the indexable description for a specialization,
// trimming each list so the passage stays focused for embedding.
func BuildPassage(specialization string) string {
	profile, ok := KnowledgeBase[specialization]
	if !ok {
		return specialization
	}

	var parts []string
	if profile.CoreFocus != "" {
		parts = append(parts, profile.CoreFocus)
	}
	if len(profile.SymptomKeywords) > 0 {
		parts = append(parts, "Common symptoms: "+strings.Join(head(profile.SymptomKeywords, 10), ", "))
	}
	if len(profile.ConditionsTreated) > 0 {
		parts = append(parts, "Conditions treated: "+strings.Join(head(profile.ConditionsTreated, 8), ", "))
	}
	if len(profile.ProceduresTests) > 0 {
		parts = append(parts, "Procedures: "+strings.Join(head(profile.ProceduresTests, 5), ", "))
	}
	return strings.Join(parts, ". ")
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
