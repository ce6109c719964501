package request

type BulkUserIDsRequest struct {
	UserIDs []int64 `json:"user_ids" validate:"required,min=1,max=500,dive,gt=0"`
}
