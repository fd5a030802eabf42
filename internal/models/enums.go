// internal/models/enums.go
package models

// Industry is the founder's sector and the funder's preference unit.
type Industry string

const (
	IndustryFintech        Industry = "Fintech"
	IndustryHealthTech     Industry = "HealthTech"
	IndustryEdTech         Industry = "EdTech"
	IndustryCleanTech      Industry = "CleanTech"
	IndustryEnterpriseSaaS Industry = "Enterprise SaaS"
	IndustryConsumer       Industry = "Consumer"
	IndustryDeepTech       Industry = "DeepTech"
	IndustryPropTech       Industry = "PropTech"
	IndustryLogistics      Industry = "Logistics"
	IndustryCybersecurity  Industry = "Cybersecurity"
)

// Stage is the fundraising stage. The declaration order is the adjacency chain.
type Stage string

const (
	StagePreSeed  Stage = "Pre-Seed"
	StageSeed     Stage = "Seed"
	StageSeriesA  Stage = "Series A"
	StageSeriesBP Stage = "Series B+"
)

type Geography string

const (
	GeographyNorthAmerica Geography = "North America"
	GeographyEurope       Geography = "Europe"
	GeographyAsia         Geography = "Asia"
	GeographyLatinAmerica Geography = "Latin America"
	GeographyMiddleEast   Geography = "Middle East"
	GeographyAfrica       Geography = "Africa"
	GeographyOceania      Geography = "Oceania"
	GeographyGlobal       Geography = "Global"
)

// QualityTier is derived from a total score and never stored on its own.
type QualityTier string

const (
	TierExcellent QualityTier = "Excellent"
	TierGood      QualityTier = "Good"
	TierFair      QualityTier = "Fair"
	TierPoor      QualityTier = "Poor"
)

var (
	allIndustries = []Industry{
		IndustryFintech, IndustryHealthTech, IndustryEdTech, IndustryCleanTech,
		IndustryEnterpriseSaaS, IndustryConsumer, IndustryDeepTech,
		IndustryPropTech, IndustryLogistics, IndustryCybersecurity,
	}
	allStages      = []Stage{StagePreSeed, StageSeed, StageSeriesA, StageSeriesBP}
	allGeographies = []Geography{
		GeographyNorthAmerica, GeographyEurope, GeographyAsia, GeographyLatinAmerica,
		GeographyMiddleEast, GeographyAfrica, GeographyOceania, GeographyGlobal,
	}
	allTiers = []QualityTier{TierExcellent, TierGood, TierFair, TierPoor}
)

func Industries() []Industry {
	return append([]Industry(nil), allIndustries...)
}

func Stages() []Stage {
	return append([]Stage(nil), allStages...)
}

func Geographies() []Geography {
	return append([]Geography(nil), allGeographies...)
}

func QualityTiers() []QualityTier {
	return append([]QualityTier(nil), allTiers...)
}

func IsValidIndustry(value string) bool {
	for _, i := range allIndustries {
		if string(i) == value {
			return true
		}
	}
	return false
}

func IsValidStage(value string) bool {
	for _, s := range allStages {
		if string(s) == value {
			return true
		}
	}
	return false
}

func IsValidGeography(value string) bool {
	for _, g := range allGeographies {
		if string(g) == value {
			return true
		}
	}
	return false
}

func IsValidQualityTier(value string) bool {
	for _, t := range allTiers {
		if string(t) == value {
			return true
		}
	}
	return false
}

// TierInfo is display metadata for a quality tier.
type TierInfo struct {
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

var tierInfo = map[QualityTier]TierInfo{
	TierExcellent: {Label: "Excellent", Color: "#10B981", Description: "Exceptional fit across all dimensions"},
	TierGood:      {Label: "Good", Color: "#3B82F6", Description: "Strong match with minor gaps"},
	TierFair:      {Label: "Fair", Color: "#F59E0B", Description: "Moderate fit, worth exploring"},
	TierPoor:      {Label: "Poor", Color: "#EF4444", Description: "Weak match, low priority"},
}

func GetTierInfo(tier QualityTier) TierInfo {
	if info, ok := tierInfo[tier]; ok {
		return info
	}
	return tierInfo[TierPoor]
}
