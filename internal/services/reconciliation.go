package services

// EffectiveQuantity - свёртка журнала: базовое количество устройства плюс
// знаковая сумма утверждённых операций. Базовое количество при этом
// никогда не перезаписывается.
func EffectiveQuantity(baseline, approvedSum int64) int64 {
	return baseline + approvedSum
}

// CanRemove сообщает, допустим ли расход requested при текущем остатке.
// Остаток ровно в размере запроса допустим (доводит до нуля).
func CanRemove(effective, requested int64) bool {
	return requested > 0 && effective >= requested
}
