package conn

type RequestAction string

const (
	RequestActionCreate RequestAction = "create"
	RequestActionFind   RequestAction = "findUnique"
	RequestActionUpdate RequestAction = "updateUnique"
	RequestActionDelete RequestAction = "deleteUnique"
)

func (action RequestAction) IsReadOnly() bool {
	return action == RequestActionFind
}

func (action RequestAction) IsValid() bool {
	switch action {
	case RequestActionCreate, RequestActionFind, RequestActionUpdate, RequestActionDelete:
		return true
	}
	return false
}
