package machines

type CreateMachineRequest struct {
	Code string `json:"code" binding:"required"`
	Type string `json:"type" binding:"required"`
}
