package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/quiz-engine/internal/errors"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationErrors is the field error list every check in this package
// returns. Services and handlers match it with errors.As.
type ValidationErrors = apperrors.ValidationErrors

// Validator combines struct tag validation with answer-key validation
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and reports failures as ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.ToValidationErrors(fieldErrs)
	}
	return err
}

// ValidateQuestion validates the question fields and its answer key.
func (v *Validator) ValidateQuestion(question *models.Question) error {
	var errs ValidationErrors
	if err := v.ValidateStruct(question); err != nil {
		errs = append(errs, apperrors.ToValidationErrors(err)...)
	}
	errs = append(errs, v.questionValidator.ValidateKey(question)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateQuiz validates the quiz settings and every question it owns.
func (v *Validator) ValidateQuiz(quiz *models.Quiz) error {
	var errs ValidationErrors
	if err := v.ValidateStruct(quiz); err != nil {
		errs = append(errs, apperrors.ToValidationErrors(err)...)
	}
	for i := range quiz.Questions {
		if err := v.ValidateQuestion(&quiz.Questions[i]); err != nil {
			var questionErrs ValidationErrors
			if errors.As(err, &questionErrs) {
				for _, e := range questionErrs {
					e.Field = fmt.Sprintf("questions[%d].%s", i, e.Field)
					errs = append(errs, e)
				}
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("session_state", validateSessionState)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateSessionState(fl validator.FieldLevel) bool {
	switch models.SessionState(fl.Field().String()) {
	case models.SessionDraft, models.SessionInProgress, models.SessionCompleted, models.SessionExpired:
		return true
	}
	return false
}
