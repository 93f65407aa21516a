// internal/repository/queries.go
package repository

const applicationColumns = `
	id, application_number, customer_id, property_id, loan_id,
	requested_loan_amount, down_payment_amount, requested_term_months, purpose, application_type, notes,
	ltv, dti, offered_interest_rate, approved_loan_amount,
	status, decision_reason,
	created_at, updated_at, submitted_at, underwriting_started_at, decision_at, closed_at`

const selectApplication = `SELECT` + applicationColumns + `
	FROM loan_applications
	WHERE id = $1`

// listApplications filters on whichever of customer ($1) and status ($2) is
// non-null.
const listApplications = `SELECT` + applicationColumns + `
	FROM loan_applications
	WHERE ($1::uuid IS NULL OR customer_id = $1)
	  AND ($2::text IS NULL OR status = $2)
	ORDER BY created_at DESC, id`

const insertApplication = `INSERT INTO loan_applications (` + applicationColumns + `
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

const updateApplication = `UPDATE loan_applications SET
		application_number = $2, customer_id = $3, property_id = $4, loan_id = $5,
		requested_loan_amount = $6, down_payment_amount = $7, requested_term_months = $8,
		purpose = $9, application_type = $10, notes = $11,
		ltv = $12, dti = $13, offered_interest_rate = $14, approved_loan_amount = $15,
		status = $16, decision_reason = $17,
		created_at = $18, updated_at = $19, submitted_at = $20, underwriting_started_at = $21,
		decision_at = $22, closed_at = $23
	WHERE id = $1`

const underwritingColumns = `
	id, application_id,
	credit_score, credit_rating, credit_approved,
	gross_monthly_income, years_employed, calculated_dti, income_verified, employment_verified,
	appraised_value, calculated_ltv, property_approved, title_clear,
	decision, decision_notes, underwriter_name,
	created_at, completed_at`

const selectUnderwriting = `SELECT` + underwritingColumns + `
	FROM underwritings
	WHERE application_id = $1`

const insertUnderwriting = `INSERT INTO underwritings (` + underwritingColumns + `
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

const updateUnderwriting = `UPDATE underwritings SET
		application_id = $2,
		credit_score = $3, credit_rating = $4, credit_approved = $5,
		gross_monthly_income = $6, years_employed = $7, calculated_dti = $8,
		income_verified = $9, employment_verified = $10,
		appraised_value = $11, calculated_ltv = $12, property_approved = $13, title_clear = $14,
		decision = $15, decision_notes = $16, underwriter_name = $17,
		created_at = $18, completed_at = $19
	WHERE id = $1`

const insertHistory = `INSERT INTO application_status_history
	(id, application_id, from_status, to_status, reason, changed_by, changed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectHistory = `SELECT id, application_id, from_status, to_status, reason, changed_by, changed_at
	FROM application_status_history
	WHERE application_id = $1
	ORDER BY changed_at, id`

const insertCondition = `INSERT INTO application_conditions
	(id, application_id, condition_name, description, condition_type, status, due_date, satisfied_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const updateCondition = `UPDATE application_conditions
	SET status = $3, satisfied_at = $4
	WHERE id = $1 AND application_id = $2`

const selectConditions = `SELECT id, application_id, condition_name, description, condition_type, status, due_date, satisfied_at, created_at
	FROM application_conditions
	WHERE application_id = $1
	ORDER BY created_at, id`

const insertDocument = `INSERT INTO application_documents
	(id, application_id, document_name, document_type, status, notes, requested_at, received_at, approved_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const updateDocument = `UPDATE application_documents
	SET status = $3, received_at = $4, approved_at = $5
	WHERE id = $1 AND application_id = $2`

const selectDocuments = `SELECT id, application_id, document_name, document_type, status, notes, requested_at, received_at, approved_at
	FROM application_documents
	WHERE application_id = $1
	ORDER BY requested_at, id`

const nextSequence = `INSERT INTO application_number_sequences (year, last_value)
	VALUES ($1, 1)
	ON CONFLICT (year) DO UPDATE SET last_value = application_number_sequences.last_value + 1
	RETURNING last_value`
