package entity

import (
	"marketplace/internal/entity/common"
)

type StringArray = common.StringArray
type Meta = common.Meta
type BaseParams = common.BaseParams
