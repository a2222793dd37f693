package provider

import (
	"fmt"
	"strings"

	"token-insight/internal/worker/model"
	"token-insight/pkg/birdeye"
)

// 风险因子权重，累加后截断到 100
const (
	weightFreezeable      = 30.0
	weightMutableMetadata = 10.0
	weightTransferFee     = 15.0
	weightNonTransferable = 40.0
	weightTop10High       = 25.0
	weightTop10Moderate   = 10.0
	weightCreatorHolding  = 15.0
	weightOwnerPresent    = 10.0

	top10HighConcentration     = 0.50
	top10ModerateConcentration = 0.30
	maxCreatorPercent          = 0.20
)

const noRiskFactors = "No significant risk factors detected"

// ScoreSecurity 根据 Birdeye 安全字段计算风险分
func ScoreSecurity(sec *birdeye.TokenSecurity) *model.SecurityAnalysis {
	if sec == nil {
		return nil
	}

	var (
		score   float64
		factors []string
	)
	add := func(weight float64, factor string) {
		score += weight
		factors = append(factors, factor)
	}

	if isTrue(sec.Freezeable) || (sec.FreezeAuthority != nil && *sec.FreezeAuthority != "") {
		add(weightFreezeable, "freeze authority enabled")
	}
	if isTrue(sec.MutableMetadata) {
		add(weightMutableMetadata, "mutable metadata")
	}
	if isTrue(sec.TransferFeeEnable) {
		add(weightTransferFee, "transfer fee enabled")
	}
	if isTrue(sec.NonTransferable) {
		add(weightNonTransferable, "non-transferable")
	}
	if sec.Top10HolderPercent != nil {
		top10 := *sec.Top10HolderPercent
		switch {
		case top10 > top10HighConcentration:
			add(weightTop10High, fmt.Sprintf("top 10 holders own %.1f%%", top10*100))
		case top10 > top10ModerateConcentration:
			add(weightTop10Moderate, fmt.Sprintf("top 10 holders own %.1f%%", top10*100))
		}
	}
	if sec.CreatorPercentage != nil && *sec.CreatorPercentage > maxCreatorPercent {
		add(weightCreatorHolding, fmt.Sprintf("creator holds %.1f%%", *sec.CreatorPercentage*100))
	}
	if sec.OwnerAddress != nil && *sec.OwnerAddress != "" {
		add(weightOwnerPresent, "owner not renounced")
	}

	desc := noRiskFactors
	if len(factors) > 0 {
		desc = strings.Join(factors, "; ")
	}
	return model.NewSecurityAnalysis(score, desc)
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
