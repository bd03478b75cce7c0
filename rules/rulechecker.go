package rules

import (
	"github.com/pkg/errors"
	"github.com/xdbsoft/gript"

	"github.com/xdbsoft/polystore/api"
)

//Checker evaluates access rules against a caller and a target collection
type Checker struct{}

func checkCondition(condition string, variables map[string]interface{}) (bool, error) {

	if len(condition) == 0 {
		return true, nil
	}

	r, err := gript.Eval(condition, variables)
	if err != nil {
		return false, err
	}

	result, ok := r.(bool)
	if !ok {
		return false, errors.New("Invalid condition: result is not boolean")
	}
	return result, nil
}

//Check reports whether the user may perform method on the collection. The
//first rule matching the collection and granting the method decides: its
//condition, evaluated with the `collection` and `user` variables in scope,
//either allows or denies. When no rule matches, access is allowed.
func (c Checker) Check(rules []Rule, collection string, user api.User, method Method) (bool, error) {

	variables := map[string]interface{}{
		"collection": collection,
		"user": map[string]interface{}{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	}

	for _, rule := range rules {

		if rule.Collection != collection && rule.Collection != "*" {
			continue
		}

		for _, a := range rule.Allow {

			found := false
			for _, am := range a.Methods {
				if am == method {
					found = true
					break
				}
			}
			if !found {
				continue
			}

			ok, err := checkCondition(a.If, variables)
			if err != nil {
				return false, err
			}
			return ok, nil
		}
	}

	return true, nil
}
