package consts

// Permissions for files and directories tubegrab creates.
const (
	// ** World Readable **
	PermsGenericDir = 0o755
	PermsLogFile    = 0o644

	// ** Private **
	PermsHomeProgDir = 0o700
	PermsConfigFile  = 0o600
	PermsCookieFile  = 0o600
)
