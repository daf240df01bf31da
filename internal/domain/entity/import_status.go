package entity

// ImportStatus resultado de importar un registro. Menor valor = peor resultado.
type ImportStatus int

const (
	ImportError ImportStatus = iota
	ImportFailure
	ImportIncomplete
	ImportSuccess
)

// Worst combina dos estados quedándose con el peor.
func (s ImportStatus) Worst(other ImportStatus) ImportStatus {
	if s < other {
		return s
	}
	return other
}

func (s ImportStatus) String() string {
	switch s {
	case ImportError:
		return "ERROR"
	case ImportFailure:
		return "FAILURE"
	case ImportIncomplete:
		return "INCOMPLETE"
	case ImportSuccess:
		return "SUCCESS"
	}
	return "UNKNOWN"
}
