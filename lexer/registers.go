package lexer

// RegisterIDs is the fixed set of recognised register keys: the
// general-purpose registers "0".."7" plus "e", the I/O error flag.
var RegisterIDs = []string{"0", "1", "2", "3", "4", "5", "6", "7", "e"}

var registerIDSet = func() map[string]bool {
	s := make(map[string]bool, len(RegisterIDs))
	for _, id := range RegisterIDs {
		s[id] = true
	}
	return s
}()

// IsValidRegisterID reports whether id names one of the fixed
// register keys.
func IsValidRegisterID(id string) bool {
	return registerIDSet[id]
}
