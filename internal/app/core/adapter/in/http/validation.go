package http

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

var registerOnce sync.Once

// RegisterValidators 在 gin 的 binding engine 註冊自訂驗證規則
//
//	nonnegative_amount: 字串/json.Number 必須能解析為 >= 0 的 decimal，且精度在 domain.ValidateAmount 範圍內
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("nonnegative_amount", nonNegativeAmount)
	})
	return err
}

func nonNegativeAmount(fl validator.FieldLevel) bool {
	str := fl.Field().String()
	if str == "" {
		// 交給 required 處理
		return true
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return false
	}
	return domain.ValidateAmount(d) == nil
}
