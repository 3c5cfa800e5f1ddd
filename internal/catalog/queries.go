package catalog

// SQL templates for the five analytical queries. Each takes two Sprintf
// arguments: the funnel table name and the dialect's lookback cutoff
// expression.
//
// Ratio columns divide by a NULLIF-guarded denominator: a bucket with zero
// eligible rows reports NULL, never 0. The zero-APR query divides by
// COUNT(*), which cannot be zero within a group.

const ficoDropoffSQL = `
SELECT
    CASE
        WHEN FICO_SCORE IS NULL THEN 'No Score'
        WHEN FICO_SCORE < 580 THEN 'Poor (<580)'
        WHEN FICO_SCORE >= 580 AND FICO_SCORE < 670 THEN 'Fair (580-669)'
        WHEN FICO_SCORE >= 670 AND FICO_SCORE < 740 THEN 'Good (670-739)'
        WHEN FICO_SCORE >= 740 AND FICO_SCORE < 800 THEN 'Very Good (740-799)'
        WHEN FICO_SCORE >= 800 THEN 'Exceptional (800+)'
    END as FICO_SCORE_BUCKET,
    COUNT(*) as TOTAL_CHECKOUTS,
    SUM(CASE WHEN IS_APPROVED = 1 THEN 1 ELSE 0 END) as APPROVED,
    SUM(CASE WHEN IS_APPROVED = 1 AND TERM_LENGTH IS NOT NULL THEN 1 ELSE 0 END) as TERM_SELECTED,
    SUM(CASE WHEN IS_APPROVED = 1 AND TERM_LENGTH IS NULL THEN 1 ELSE 0 END) as DROPPED_OFF,
    ROUND(SUM(CASE WHEN IS_APPROVED = 1 AND TERM_LENGTH IS NULL THEN 1 ELSE 0 END) * 100.0 / NULLIF(SUM(CASE WHEN IS_APPROVED = 1 THEN 1 ELSE 0 END), 0), 2) as DROPOFF_PCT
FROM %s
WHERE CHECKOUT_CREATED_DT >= %s
GROUP BY 1
ORDER BY
    CASE FICO_SCORE_BUCKET
        WHEN 'Exceptional (800+)' THEN 1
        WHEN 'Very Good (740-799)' THEN 2
        WHEN 'Good (670-739)' THEN 3
        WHEN 'Fair (580-669)' THEN 4
        WHEN 'Poor (<580)' THEN 5
        WHEN 'No Score' THEN 6
    END
`

const termConfirmSQL = `
SELECT
    CASE
        WHEN FICO_SCORE IS NULL THEN 'No Score'
        WHEN FICO_SCORE < 580 THEN 'Poor (<580)'
        WHEN FICO_SCORE >= 580 AND FICO_SCORE < 670 THEN 'Fair (580-669)'
        WHEN FICO_SCORE >= 670 AND FICO_SCORE < 740 THEN 'Good (670-739)'
        WHEN FICO_SCORE >= 740 AND FICO_SCORE < 800 THEN 'Very Good (740-799)'
        WHEN FICO_SCORE >= 800 THEN 'Exceptional (800+)'
    END as FICO_SCORE_BUCKET,
    SUM(CASE WHEN TERM_LENGTH IS NOT NULL THEN 1 ELSE 0 END) as WITH_TERM_SELECTED,
    SUM(CASE WHEN TERM_LENGTH IS NOT NULL AND IS_CONFIRMED = 1 THEN 1 ELSE 0 END) as CONFIRMED_WITH_TERM,
    ROUND(SUM(CASE WHEN TERM_LENGTH IS NOT NULL AND IS_CONFIRMED = 1 THEN 1 ELSE 0 END) * 100.0 / NULLIF(SUM(CASE WHEN TERM_LENGTH IS NOT NULL THEN 1 ELSE 0 END), 0), 2) as CONFIRM_RATE_WITH_TERM,
    SUM(CASE WHEN TERM_LENGTH IS NULL THEN 1 ELSE 0 END) as WITHOUT_TERM_SELECTED,
    SUM(CASE WHEN TERM_LENGTH IS NULL AND IS_CONFIRMED = 1 THEN 1 ELSE 0 END) as CONFIRMED_WITHOUT_TERM,
    ROUND(SUM(CASE WHEN TERM_LENGTH IS NULL AND IS_CONFIRMED = 1 THEN 1 ELSE 0 END) * 100.0 / NULLIF(SUM(CASE WHEN TERM_LENGTH IS NULL THEN 1 ELSE 0 END), 0), 2) as CONFIRM_RATE_WITHOUT_TERM
FROM %s
WHERE CHECKOUT_CREATED_DT >= %s
GROUP BY 1
ORDER BY
    CASE FICO_SCORE_BUCKET
        WHEN 'Exceptional (800+)' THEN 1
        WHEN 'Very Good (740-799)' THEN 2
        WHEN 'Good (670-739)' THEN 3
        WHEN 'Fair (580-669)' THEN 4
        WHEN 'Poor (<580)' THEN 5
        WHEN 'No Score' THEN 6
    END
`

const aovDropoffSQL = `
SELECT
    CASE
        WHEN TOTAL_AMOUNT < 150 THEN 'a. <$150'
        WHEN TOTAL_AMOUNT >= 150 AND TOTAL_AMOUNT < 500 THEN 'b. $150-$500'
        WHEN TOTAL_AMOUNT >= 500 AND TOTAL_AMOUNT < 1000 THEN 'c. $500-$1000'
        WHEN TOTAL_AMOUNT >= 1000 THEN 'd. $1000+'
    END as AOV_BUCKET,
    SUM(CASE WHEN IS_APPROVED = 1 THEN 1 ELSE 0 END) as APPROVED,
    SUM(CASE WHEN IS_APPROVED = 1 AND TERM_LENGTH IS NULL THEN 1 ELSE 0 END) as DROPPED_OFF,
    ROUND(SUM(CASE WHEN IS_APPROVED = 1 AND TERM_LENGTH IS NULL THEN 1 ELSE 0 END) * 100.0 / NULLIF(SUM(CASE WHEN IS_APPROVED = 1 THEN 1 ELSE 0 END), 0), 1) as DROPOFF_PCT
FROM %s
WHERE CHECKOUT_CREATED_DT >= %s
GROUP BY 1
ORDER BY 1
`

const zeroAPRSQL = `
SELECT
    CASE
        WHEN GREATEST(
            COALESCE(CASE WHEN OFFERED_APR1 = 0 THEN OFFERED_PLAN1_LENGTH ELSE 0 END, 0),
            COALESCE(CASE WHEN OFFERED_APR2 = 0 THEN OFFERED_PLAN2_LENGTH ELSE 0 END, 0),
            COALESCE(CASE WHEN OFFERED_APR3 = 0 THEN OFFERED_PLAN3_LENGTH ELSE 0 END, 0)
        ) = 0 THEN 'a. No 0%% APR'
        WHEN GREATEST(
            COALESCE(CASE WHEN OFFERED_APR1 = 0 THEN OFFERED_PLAN1_LENGTH ELSE 0 END, 0),
            COALESCE(CASE WHEN OFFERED_APR2 = 0 THEN OFFERED_PLAN2_LENGTH ELSE 0 END, 0),
            COALESCE(CASE WHEN OFFERED_APR3 = 0 THEN OFFERED_PLAN3_LENGTH ELSE 0 END, 0)
        ) <= 6 THEN 'b. 0%% for 1-6 mo'
        WHEN GREATEST(
            COALESCE(CASE WHEN OFFERED_APR1 = 0 THEN OFFERED_PLAN1_LENGTH ELSE 0 END, 0),
            COALESCE(CASE WHEN OFFERED_APR2 = 0 THEN OFFERED_PLAN2_LENGTH ELSE 0 END, 0),
            COALESCE(CASE WHEN OFFERED_APR3 = 0 THEN OFFERED_PLAN3_LENGTH ELSE 0 END, 0)
        ) <= 12 THEN 'c. 0%% for 7-12 mo'
        ELSE 'd. 0%% for 13+ mo'
    END as ZERO_APR_BUCKET,
    COUNT(*) as TOTAL_APPROVED,
    SUM(CASE WHEN TERM_LENGTH IS NOT NULL THEN 1 ELSE 0 END) as COMPLETED,
    SUM(CASE WHEN TERM_LENGTH IS NULL THEN 1 ELSE 0 END) as DROPPED_OFF,
    ROUND(SUM(CASE WHEN TERM_LENGTH IS NOT NULL THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 1) as COMPLETION_RATE,
    ROUND(SUM(CASE WHEN TERM_LENGTH IS NULL THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 1) as DROPOFF_RATE
FROM %s
WHERE CHECKOUT_CREATED_DT >= %s
    AND TOTAL_AMOUNT >= 1000
    AND IS_APPROVED = 1
GROUP BY 1
ORDER BY 1
`

const ficoAOVMatrixSQL = `
SELECT
    CASE
        WHEN FICO_SCORE >= 740 THEN 'High FICO (740+)'
        WHEN FICO_SCORE >= 670 AND FICO_SCORE < 740 THEN 'Good (670-739)'
        WHEN FICO_SCORE >= 580 AND FICO_SCORE < 670 THEN 'Fair (580-669)'
        WHEN FICO_SCORE < 580 THEN 'Poor (<580)'
        ELSE 'No Score'
    END as FICO_GROUP,
    CASE
        WHEN TOTAL_AMOUNT < 150 THEN '<$150'
        WHEN TOTAL_AMOUNT >= 150 AND TOTAL_AMOUNT < 500 THEN '$150-$500'
        WHEN TOTAL_AMOUNT >= 500 AND TOTAL_AMOUNT < 1000 THEN '$500-$1000'
        WHEN TOTAL_AMOUNT >= 1000 THEN '$1000+'
    END as AOV_BUCKET,
    SUM(CASE WHEN IS_APPROVED = 1 THEN 1 ELSE 0 END) as APPROVED,
    SUM(CASE WHEN IS_APPROVED = 1 AND TERM_LENGTH IS NULL THEN 1 ELSE 0 END) as DROPPED_OFF,
    ROUND(SUM(CASE WHEN IS_APPROVED = 1 AND TERM_LENGTH IS NULL THEN 1 ELSE 0 END) * 100.0 / NULLIF(SUM(CASE WHEN IS_APPROVED = 1 THEN 1 ELSE 0 END), 0), 1) as DROPOFF_PCT
FROM %s
WHERE CHECKOUT_CREATED_DT >= %s
AND FICO_SCORE IS NOT NULL
GROUP BY 1, 2
ORDER BY
    CASE FICO_GROUP
        WHEN 'High FICO (740+)' THEN 1
        WHEN 'Good (670-739)' THEN 2
        WHEN 'Fair (580-669)' THEN 3
        WHEN 'Poor (<580)' THEN 4
    END,
    CASE AOV_BUCKET
        WHEN '<$150' THEN 1
        WHEN '$150-$500' THEN 2
        WHEN '$500-$1000' THEN 3
        WHEN '$1000+' THEN 4
    END
`
