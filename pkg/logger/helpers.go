package logger

// LogAction logs a completed follow/unfollow action
func LogAction(account, kind string, success bool, err error) {
	fields := map[string]interface{}{
		"account": account,
		"action":  kind,
		"success": success,
	}
	if err != nil {
		fields["error"] = err.Error()
		GetLogger().ErrorWithFields("action failed", fields)
		return
	}
	GetLogger().InfoWithFields("action completed", fields)
}

// LogSkip logs a skipped candidate with the reason
func LogSkip(account, phase, reason string) {
	GetLogger().WarnWithFields("skipping account", map[string]interface{}{
		"account": account,
		"phase":   phase,
		"reason":  reason,
	})
}

// LogQuota logs the state of the quota gate
func LogQuota(hourly, daily int, canAct bool) {
	GetLogger().DebugWithFields("quota check", map[string]interface{}{
		"hourly":  hourly,
		"daily":   daily,
		"can_act": canAct,
	})
}

// LogHarvest logs the outcome of a list harvest
func LogHarvest(target string, requested, collected int) {
	GetLogger().InfoWithFields("harvest finished", map[string]interface{}{
		"target":    target,
		"requested": requested,
		"collected": collected,
	})
}
