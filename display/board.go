//go:build !pyportal && !wioterminal

package display

// Board returns nil; this board has no screen
func Board() *Mirror {
	return nil
}
