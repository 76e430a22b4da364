package shared

func BoolToEnabled(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}
