package billing

// ManualProcessorRef is the sentinel stored in processor reference columns for
// subscriptions and items that are managed by bank-transfer payments and have
// no counterpart at the payment processor.
const ManualProcessorRef = "manual_payment"

// Plan codes. The trial plan is granted on signup and is never sold.
const (
	PlanTrial       = "trial"
	PlanIndividual  = "individual"
	PlanProfesional = "profesional"
	PlanEmpresarial = "empresarial"
	PlanDespacho    = "despacho"
)

// Assistant bot codes sold as standalone subscription items.
const (
	BotGastos       = "bot_gastos"
	BotComprobantes = "bot_comprobantes"
)

// AddonRfcExtra grants one extra RFC slot per unit of quantity.
const AddonRfcExtra = "addon_rfc_extra"

// ItemType classifies a subscription item.
type ItemType string

const (
	ItemTypePlan  ItemType = "plan"
	ItemTypeBot   ItemType = "bot"
	ItemTypeAddon ItemType = "addon"
)

// Feature identifies a metered capability.
type Feature string

const (
	FeatureCfdiAI     Feature = "cfdi_ai"
	FeatureBotMessage Feature = "bot_message"
)

// baseRfcLimits is the number of RFCs included with each plan before
// extra-capacity addons are counted.
var baseRfcLimits = map[string]int{
	PlanTrial:       1,
	PlanIndividual:  1,
	PlanProfesional: 10,
	PlanEmpresarial: 50,
	PlanDespacho:    300,
}

// usageLimits maps feature -> plan code -> allowance per usage period.
// A missing entry means the feature is unmetered for that plan.
var usageLimits = map[Feature]map[string]int{
	FeatureBotMessage: {
		PlanTrial:       2,
		PlanIndividual:  50,
		PlanProfesional: 100,
		PlanEmpresarial: 200,
	},
	FeatureCfdiAI: {
		PlanTrial:       5,
		PlanIndividual:  25,
		PlanProfesional: 50,
		PlanEmpresarial: 100,
	},
}

// Catalog resolves processor price IDs to domain codes and answers
// plan-entitlement questions. Price mappings come from configuration since
// price IDs differ between processor environments.
type Catalog struct {
	priceToCode map[string]string
	codeToPrice map[string]string
	planCodes   map[string]bool
}

// NewCatalog builds a catalog from a priceID -> code mapping. Codes that match
// a known plan code classify as plans regardless of item metadata.
func NewCatalog(priceToCode map[string]string) *Catalog {
	c := &Catalog{
		priceToCode: make(map[string]string, len(priceToCode)),
		codeToPrice: make(map[string]string, len(priceToCode)),
		planCodes: map[string]bool{
			PlanTrial:       true,
			PlanIndividual:  true,
			PlanProfesional: true,
			PlanEmpresarial: true,
			PlanDespacho:    true,
		},
	}
	for price, code := range priceToCode {
		c.priceToCode[price] = code
		c.codeToPrice[code] = price
	}
	return c
}

// CodeForPrice resolves a processor price ID to its domain code.
func (c *Catalog) CodeForPrice(priceID string) (string, bool) {
	code, ok := c.priceToCode[priceID]
	return code, ok
}

// PriceForCode resolves a domain code back to its processor price ID.
func (c *Catalog) PriceForCode(code string) (string, bool) {
	price, ok := c.codeToPrice[code]
	return price, ok
}

// IsPlanCode reports whether code names a plan.
func (c *Catalog) IsPlanCode(code string) bool {
	return c.planCodes[code]
}

// RfcLimit returns the base RFC allowance for a plan code. Unknown codes get
// the individual allowance.
func (c *Catalog) RfcLimit(planCode string) int {
	if limit, ok := baseRfcLimits[planCode]; ok {
		return limit
	}
	return baseRfcLimits[PlanIndividual]
}

// UsageLimit returns the per-period allowance for a feature under a plan.
// The second return is false when the feature is unmetered for that plan.
func (c *Catalog) UsageLimit(feature Feature, planCode string) (int, bool) {
	limits, ok := usageLimits[feature]
	if !ok {
		return 0, false
	}
	limit, ok := limits[planCode]
	return limit, ok
}
